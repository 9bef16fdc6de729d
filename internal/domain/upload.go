package domain

// Upload describes a stored file: the original client name, the public URL
// of the stored copy, the random name stem, and an optional thumbnail URL
// for image uploads.
type Upload struct {
	FileName     string  `json:"file_name"`
	FileURL      string  `json:"file_url"`
	Hash         string  `json:"hash"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}
