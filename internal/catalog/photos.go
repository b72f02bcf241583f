package catalog

import (
	"errors"
	"net/http"
	"strings"

	"saborconquista/internal/model"
)

const (
	MaxPhotos    = 5
	MaxPhotoSize = 5 * 1024 * 1024 // 5MB
)

var (
	ErrTooManyPhotos    = errors.New("máximo de 5 fotos por item")
	ErrInvalidPhotoType = errors.New("formato de arquivo inválido. apenas .jpg, .png, .webp e .gif são permitidos")
	ErrPhotoTooLarge    = errors.New("a foto excede o tamanho máximo de 5MB")
	ErrEmptyPhoto       = errors.New("arquivo vazio")
)

var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// photoType returns the media type of p. A declared type that is not an image falls back to
// sniffing the content.
func photoType(p model.Photo) string {
	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(p.ContentType, ";", 2)[0]))
	if allowedPhotoTypes[declared] {
		return declared
	}
	return strings.SplitN(http.DetectContentType(p.Data), ";", 2)[0]
}

func validatePhoto(p model.Photo) (model.Photo, error) {
	if len(p.Data) == 0 {
		return p, ErrEmptyPhoto
	}
	if len(p.Data) > MaxPhotoSize {
		return p, ErrPhotoTooLarge
	}
	ct := photoType(p)
	if !allowedPhotoTypes[ct] {
		return p, ErrInvalidPhotoType
	}
	p.ContentType = ct
	return p, nil
}
