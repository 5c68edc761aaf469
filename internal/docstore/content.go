package docstore

import (
	"net/http"
	"path"
	"strings"

	"github.com/xxxsen/normhelper/internal/model"
	"github.com/xxxsen/normhelper/internal/pkg/apperr"
)

var allowedMimeTypes = map[string]model.DocumentEncoding{
	"text/plain":      model.EncodingText,
	"application/pdf": model.EncodingBinary,
}

// finalizeContent applies the shared content checks every backend goes
// through: emptiness, content-type allow-list and the binary size ceiling.
// The ceiling applies to the raw bytes, before base64 inflates them by ~33%.
func finalizeContent(id string, data []byte, declaredType string, maxBytes int64) (*model.DocumentContent, error) {
	if len(data) == 0 {
		return nil, apperr.New(apperr.KindDocumentEmpty)
	}
	mime := normalizeMimeType(declaredType)
	if mime == "" || mime == "application/octet-stream" {
		mime = normalizeMimeType(http.DetectContentType(data))
	}
	encoding, ok := allowedMimeTypes[mime]
	if !ok {
		return nil, apperr.Newf(apperr.KindInvalidContentType, "unsupported content type %q for document %q", mime, id)
	}
	if encoding == model.EncodingBinary && maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, apperr.Newf(apperr.KindDocumentTooLarge, "document %q exceeds the %d byte limit", id, maxBytes)
	}
	return &model.DocumentContent{
		ID:        id,
		Encoding:  encoding,
		MimeType:  mime,
		Bytes:     data,
		SizeBytes: int64(len(data)),
	}, nil
}

func normalizeMimeType(value string) string {
	mime := strings.TrimSpace(value)
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mime))
}

// mimeTypeByExtension maps catalog file names to their declared type;
// unknown extensions fall back to sniffing in finalizeContent.
func mimeTypeByExtension(id string) string {
	switch strings.ToLower(path.Ext(id)) {
	case ".txt", ".md":
		return "text/plain"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}

func isCatalogFile(name string) bool {
	return mimeTypeByExtension(name) != ""
}
