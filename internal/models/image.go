package models

type ImageKind string

const (
	ImageLocal  ImageKind = "local"
	ImageInline ImageKind = "inline"
	ImageRemote ImageKind = "remote"
)

// ImageRef identifies a stored image. Which fields are set depends on Kind:
// local uses URL, inline uses Data, remote uses URL and Filename (the object
// key). ContentType is always set.
type ImageRef struct {
	Kind        ImageKind `json:"kind"`
	URL         string    `json:"url,omitempty"`
	Filename    string    `json:"filename,omitempty"`
	Data        []byte    `json:"-"`
	ContentType string    `json:"content_type"`
}

func (r ImageRef) IsZero() bool {
	return r.Kind == "" && r.URL == "" && r.Filename == "" && len(r.Data) == 0
}
