package model

// Image is a normalized attachment. Data and MIME are stored together or not
// at all.
type Image struct {
	Data []byte `db:"image"`
	MIME string `db:"image_mime"`
}

// ImageUpdate describes what an update does to an existing attachment.
type ImageUpdate int

const (
	ImageKeep ImageUpdate = iota
	ImageReplace
	ImageRemove
)
