package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/contactdesk/admin-server/internal/database"
	"github.com/contactdesk/admin-server/internal/model"
)

const blogColumns = `id, title, slug, excerpt, content, image_mime, published, created_at, updated_at`

type BlogPostRepository interface {
	ListAll(ctx context.Context) ([]model.BlogPost, error)
	ListPublished(ctx context.Context) ([]model.BlogPost, error)
	FindByID(ctx context.Context, id int64) (*model.BlogPost, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
	FindImage(ctx context.Context, id int64) (*model.Image, error)
	Create(ctx context.Context, params model.CreateBlogPostParams) (*model.BlogPost, error)
	Update(ctx context.Context, id int64, params model.UpdateBlogPostParams) (*model.BlogPost, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type blogPostRepo struct {
	db database.DBTX
}

func NewBlogPostRepository(db *sqlx.DB) BlogPostRepository {
	return &blogPostRepo{db: db}
}

func (r *blogPostRepo) ListAll(ctx context.Context) ([]model.BlogPost, error) {
	posts := []model.BlogPost{}
	err := r.db.SelectContext(ctx, &posts, `
		SELECT `+blogColumns+` FROM blog_posts
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *blogPostRepo) ListPublished(ctx context.Context) ([]model.BlogPost, error) {
	posts := []model.BlogPost{}
	err := r.db.SelectContext(ctx, &posts, r.db.Rebind(`
		SELECT `+blogColumns+` FROM blog_posts
		WHERE published = ?
		ORDER BY created_at DESC, id DESC
	`), true)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *blogPostRepo) FindByID(ctx context.Context, id int64) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.GetContext(ctx, &post, r.db.Rebind(`
		SELECT `+blogColumns+` FROM blog_posts WHERE id = ?
	`), id)
	return HandleNotFound(&post, err)
}

func (r *blogPostRepo) FindPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	var post model.BlogPost
	err := r.db.GetContext(ctx, &post, r.db.Rebind(`
		SELECT `+blogColumns+` FROM blog_posts
		WHERE slug = ? AND published = ?
	`), slug, true)
	return HandleNotFound(&post, err)
}

func (r *blogPostRepo) FindImage(ctx context.Context, id int64) (*model.Image, error) {
	var img model.Image
	err := r.db.GetContext(ctx, &img, r.db.Rebind(`
		SELECT image, image_mime FROM blog_posts
		WHERE id = ? AND image IS NOT NULL
	`), id)
	return HandleNotFound(&img, err)
}

func (r *blogPostRepo) Create(ctx context.Context, params model.CreateBlogPostParams) (*model.BlogPost, error) {
	image, mime := imageArgs(params.Image)

	var id int64
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`
		INSERT INTO blog_posts (title, slug, excerpt, content, image, image_mime, published, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), params.Title, params.Slug, params.Excerpt, params.Content,
		image, mime, params.Published, params.CreatedAt, params.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *blogPostRepo) Update(ctx context.Context, id int64, params model.UpdateBlogPostParams) (*model.BlogPost, error) {
	sets := []string{"title = ?", "slug = ?", "excerpt = ?", "content = ?", "published = ?", "updated_at = ?"}
	args := []any{params.Title, params.Slug, params.Excerpt, params.Content, params.Published, params.UpdatedAt}

	sets, args = applyImageUpdate(sets, args, params.ImageUpdate, params.Image)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE blog_posts SET `+strings.Join(sets, ", ")+` WHERE id = ?
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

func (r *blogPostRepo) Delete(ctx context.Context, id int64) (int64, error) {
	return rowsAffected(r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM blog_posts WHERE id = ?`), id))
}
