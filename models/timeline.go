package models

// Timeline bündelt die Publikations-Meilensteine eines Datasets oder einer Collection.
type Timeline struct {
	InternalID int64 `json:"-"`

	Posted               *Timestamp `json:"posted,omitempty"`
	Submission           *Timestamp `json:"submission,omitempty"`
	Revision             *Timestamp `json:"revision,omitempty"`
	FirstOnline          *Timestamp `json:"firstOnline,omitempty"`
	PublisherAcceptance  *Timestamp `json:"publisherAcceptance,omitempty"`
	PublisherPublication *Timestamp `json:"publisherPublication,omitempty"`
}
