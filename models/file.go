package models

// File repräsentiert eine einzelne Datei eines Datasets.
//
// Size ist entweder der vom Upstream gemeldete Wert oder, bei
// THREDDS-Katalogen mit gemeldeter Größe 0, die rekursiv aufsummierte
// Byte-Größe aus dem Katalog-Abstieg.
type File struct {
	InternalID int64 `json:"-"`

	FigshareID   int64   `json:"id"`
	Name         string  `json:"name"`
	Size         int64   `json:"size"`
	IsLinkOnly   bool    `json:"is_link_only"`
	DownloadURL  *string `json:"download_url,omitempty"`
	SuppliedMD5  *string `json:"supplied_md5,omitempty"`
	ComputedMD5  *string `json:"computed_md5,omitempty"`
	ViewerType   *string `json:"viewer_type,omitempty"`
	PreviewState *string `json:"preview_state,omitempty"`
	Status       *string `json:"status,omitempty"`
	UploadURL    *string `json:"upload_url,omitempty"`
	UploadToken  *string `json:"upload_token,omitempty"`
}
