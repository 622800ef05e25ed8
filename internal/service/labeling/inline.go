package labeling

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/mamadbah2/inventaire/internal/domain/models"
)

// EncodeInline re-encodes the rendered barcode as a lossless PNG blob for
// inline persistence inside the inventory record. No label document is
// produced in this mode.
func (c *Composer) EncodeInline(img *models.BarcodeImage) ([]byte, error) {
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, fmt.Errorf("decode barcode image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, fmt.Errorf("encode inline png: %w", err)
	}

	return buf.Bytes(), nil
}
