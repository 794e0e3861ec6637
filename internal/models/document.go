package models

// Document is an uploaded bill or meter photo
type Document struct {
	Name        string
	ContentType string
	Data        []byte
}
