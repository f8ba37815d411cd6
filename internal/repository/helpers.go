package repository

import (
	"database/sql"
	"errors"

	"github.com/contactdesk/admin-server/internal/model"
)

// HandleNotFound processes a database query result, converting sql.ErrNoRows
// to a nil result without error. This is a common pattern for Find* operations
// where a missing row is not an error condition.
//
// Usage:
//
//	var item model.Item
//	err := r.db.GetContext(ctx, &item, query, args...)
//	return HandleNotFound(&item, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// rowsAffected unwraps an Exec result into the affected row count.
func rowsAffected(result sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// imageArgs returns the (image, image_mime) pair for an insert, both NULL when
// there is no attachment.
func imageArgs(img *model.Image) (any, any) {
	if img == nil || len(img.Data) == 0 {
		return nil, nil
	}
	return img.Data, img.MIME
}
