package model

type DocumentEncoding string

const (
	EncodingText   DocumentEncoding = "text"
	EncodingBinary DocumentEncoding = "binary"
)

// DocumentContent is the resolved content of a catalog document. Entities are
// created per request and never shared between requests.
type DocumentContent struct {
	ID        string
	Encoding  DocumentEncoding
	MimeType  string
	Bytes     []byte
	SizeBytes int64
}
