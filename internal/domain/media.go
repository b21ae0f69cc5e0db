package domain

// Media is a resolved media reference: raw bytes plus their MIME type.
type Media struct {
	Data     []byte
	MIMEType string
}

// IsImage reports whether the media can be sent to the model as an image.
func (m *Media) IsImage() bool {
	switch m.MIMEType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}
