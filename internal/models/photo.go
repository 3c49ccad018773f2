package models

import "time"

type Photo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Image      ImageRef  `json:"image"`
	UploadedBy int64     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`

	// Owner is filled by queries that join users; nil for orphaned photos.
	Owner *User `json:"owner,omitempty"`
}

// ImageSrc is the address templates put into <img src>.
func (p *Photo) ImageSrc() string {
	if p.Image.Kind == ImageInline || p.Image.URL == "" {
		return "/photos/" + p.ID + "/image"
	}
	return p.Image.URL
}

func (p *Photo) OwnerName() string {
	if p.Owner == nil {
		return "unknown"
	}
	return p.Owner.Username
}
