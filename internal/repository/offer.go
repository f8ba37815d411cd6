package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/model"
)

const offerColumns = `id, title, slug, description, link, latitude, longitude, image_mime, created_at`

type OfferRepository interface {
	List(ctx context.Context) ([]model.Offer, error)
	FindByID(ctx context.Context, id int64) (*model.Offer, error)
	FindImage(ctx context.Context, id int64) (*model.Image, error)
	Create(ctx context.Context, params model.CreateOfferParams) (*model.Offer, error)
	// Update returns nil when no offer has the id.
	Update(ctx context.Context, id int64, params model.UpdateOfferParams) (*model.Offer, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type offerRepo struct {
	db database.DBTX
}

func NewOfferRepository(db *sqlx.DB) OfferRepository {
	return &offerRepo{db: db}
}

func (r *offerRepo) List(ctx context.Context) ([]model.Offer, error) {
	offers := []model.Offer{}
	err := r.db.SelectContext(ctx, &offers, `
		SELECT `+offerColumns+` FROM offers
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *offerRepo) FindByID(ctx context.Context, id int64) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.GetContext(ctx, &offer, r.db.Rebind(`
		SELECT `+offerColumns+` FROM offers WHERE id = ?
	`), id)
	return HandleNotFound(&offer, err)
}

func (r *offerRepo) FindImage(ctx context.Context, id int64) (*model.Image, error) {
	var img model.Image
	err := r.db.GetContext(ctx, &img, r.db.Rebind(`
		SELECT image, image_mime FROM offers
		WHERE id = ? AND image IS NOT NULL
	`), id)
	return HandleNotFound(&img, err)
}

func (r *offerRepo) Create(ctx context.Context, params model.CreateOfferParams) (*model.Offer, error) {
	image, mime := imageArgs(params.Image)

	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO offers (title, slug, description, link, latitude, longitude, image, image_mime, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), params.Title, params.Slug, params.Description, params.Link,
		params.Latitude, params.Longitude, image, mime, params.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *offerRepo) Update(ctx context.Context, id int64, params model.UpdateOfferParams) (*model.Offer, error) {
	sets := []string{"title = ?", "slug = ?", "description = ?", "link = ?", "latitude = ?", "longitude = ?"}
	args := []any{params.Title, params.Slug, params.Description, params.Link, params.Latitude, params.Longitude}

	sets, args = applyImageUpdate(sets, args, params.ImageUpdate, params.Image)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE offers SET `+strings.Join(sets, ", ")+` WHERE id = ?
	`), args...)
	n, err := rowsAffected(result, err)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *offerRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM offers WHERE id = ?`), id))
}

// applyImageUpdate extends an UPDATE's SET list so the image pair changes
// together.
func applyImageUpdate(sets []string, args []any, update model.ImageUpdate, img *model.Image) ([]string, []any) {
	switch update {
	case model.ImageReplace:
		image, mime := imageArgs(img)
		sets = append(sets, "image = ?", "image_mime = ?")
		args = append(args, image, mime)
	case model.ImageRemove:
		sets = append(sets, "image = NULL", "image_mime = NULL")
	}
	return sets, args
}
