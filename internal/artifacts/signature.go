package artifacts

import (
	"bytes"
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"

	"chantierplus/internal/apperr"
)

// data:image/png;base64,....
var dataURLPrefix = regexp.MustCompile(`^data:image/[A-Za-z0-9.+-]+;base64,`)

// DecodeSignature снимает необязательный data-URL префикс и декодирует base64.
func DecodeSignature(payload string) ([]byte, error) {
	s := strings.TrimSpace(payload)
	s = dataURLPrefix.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', ' ':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, apperr.Validation("signature payload is empty")
	}

	enc := base64.StdEncoding
	if !strings.HasSuffix(s, "=") && len(s)%4 != 0 {
		enc = base64.RawStdEncoding
	}
	raw, err := enc.DecodeString(s)
	if err != nil {
		return nil, apperr.Validation("signature payload is not valid base64")
	}
	if len(raw) == 0 {
		return nil, apperr.Validation("signature payload is empty")
	}
	return raw, nil
}

// MaterializeSignature сохраняет подпись как артефакт со случайным именем.
func (s *Store) MaterializeSignature(payload string) (string, error) {
	raw, err := DecodeSignature(payload)
	if err != nil {
		return "", err
	}
	ext := ".png"
	switch http.DetectContentType(raw) {
	case "image/jpeg":
		ext = ".jpg"
	case "image/gif":
		ext = ".gif"
	case "image/webp":
		ext = ".webp"
	}
	return s.Put(ext, bytes.NewReader(raw))
}
