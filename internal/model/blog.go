package model

import (
	"time"
)

type BlogPost struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Slug      string    `db:"slug" json:"slug"`
	Excerpt   *string   `db:"excerpt" json:"excerpt"`
	Content   string    `db:"content" json:"content"`
	ImageMIME *string   `db:"image_mime" json:"imageMime"`
	Published bool      `db:"published" json:"published"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

func (p *BlogPost) HasImage() bool {
	return p.ImageMIME != nil
}

type BlogPostFields struct {
	Title     string
	Slug      string
	Excerpt   *string
	Content   string
	Published bool
}

type CreateBlogPostParams struct {
	BlogPostFields
	Image     *Image
	CreatedAt time.Time
}

type UpdateBlogPostParams struct {
	BlogPostFields
	ImageUpdate ImageUpdate
	Image       *Image
	UpdatedAt   time.Time
}
