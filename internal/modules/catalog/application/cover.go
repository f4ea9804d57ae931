package application

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	"github.com/saransh1220/libraria/internal/modules/catalog/domain"
)

// CoverWidth is the width of stored cover thumbnails; height keeps the aspect ratio
const CoverWidth = 600

// MakeThumbnail decodes an image, scales it down to width and re-encodes it as
// JPEG. Images already narrower than width are not upscaled.
func MakeThumbnail(src io.Reader, width int) (*bytes.Buffer, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCover, err)
	}

	if img.Bounds().Dx() > width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(80)); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf, nil
}
