package artifacts

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"chantierplus/internal/apperr"
)

const DefaultMaxUpload = 10 << 20 // 10 MiB

// допустимые MIME и их расширения
var allowedImages = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// Upload — входящий файл из multipart-формы.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64 // -1, если неизвестен
	Body        io.Reader
}

// UploadGate проверяет тип, расширение и размер фото перед сохранением.
type UploadGate struct {
	store    *Store
	maxBytes int64
}

func NewUploadGate(store *Store, maxBytes int64) *UploadGate {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	return &UploadGate{store: store, maxBytes: maxBytes}
}

func (g *UploadGate) MaxBytes() int64 { return g.maxBytes }

// Accept сохраняет файл компании owner под новым uuid с исходным расширением.
func (g *UploadGate) Accept(owner uuid.UUID, u Upload) (string, error) {
	ct, _, err := mime.ParseMediaType(u.ContentType)
	if err != nil {
		return "", apperr.Validation("content type %q is not allowed", u.ContentType)
	}
	exts, ok := allowedImages[ct]
	if !ok {
		return "", apperr.Validation("content type %q is not allowed", ct)
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if !slices.Contains(exts, ext) {
		return "", apperr.Validation("extension %q does not match content type %s", ext, ct)
	}
	if u.Size > g.maxBytes {
		return "", apperr.Validation("file size %d exceeds limit of %d bytes", u.Size, g.maxBytes)
	}

	// размер из заголовка может врать — читаем не больше лимита + 1
	data, err := io.ReadAll(io.LimitReader(u.Body, g.maxBytes+1))
	if err != nil {
		return "", apperr.Storage(err, "read upload")
	}
	if int64(len(data)) > g.maxBytes {
		return "", apperr.Validation("file size exceeds limit of %d bytes", g.maxBytes)
	}
	if sniffed := http.DetectContentType(data); sniffed != ct {
		return "", apperr.Validation("file content (%s) does not match content type %s", sniffed, ct)
	}
	return g.store.PutOwned(owner, ext, bytes.NewReader(data))
}
