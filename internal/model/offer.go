package model

import (
	"time"
)

// Offer is the list/detail projection; image bytes are served separately.
type Offer struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Slug        string    `db:"slug" json:"slug"`
	Description *string   `db:"description" json:"description"`
	Link        *string   `db:"link" json:"link"`
	Latitude    *float64  `db:"latitude" json:"latitude"`
	Longitude   *float64  `db:"longitude" json:"longitude"`
	ImageMIME   *string   `db:"image_mime" json:"imageMime"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

func (o *Offer) HasImage() bool {
	return o.ImageMIME != nil
}

type OfferFields struct {
	Title       string
	Slug        string
	Description *string
	Link        *string
	Latitude    *float64
	Longitude   *float64
}

type CreateOfferParams struct {
	OfferFields
	Image     *Image
	CreatedAt time.Time
}

type UpdateOfferParams struct {
	OfferFields
	ImageUpdate ImageUpdate
	Image       *Image
}
