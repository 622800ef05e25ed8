package labeling

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventaire/internal/domain/models"
)

const (
	headerFontSize = 16
	bodyFontSize   = 12
)

// Composer turns a rendered barcode and its product metadata into label
// outputs. Everything happens in memory; no temporary files are written.
type Composer struct {
	logger *zap.Logger
}

// NewComposer wires a new composer instance.
func NewComposer(logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{logger: logger}
}

// ComposePDF produces the single-page printable label: the EAN header, the
// four metadata lines and the barcode placed below the text block. The layout
// is fixed; content never overflows onto a second page.
func (c *Composer) ComposePDF(code models.EncodedCode, img *models.BarcodeImage, product models.Product) ([]byte, error) {
	cfg := config.NewBuilder().Build()
	m := maroto.New(cfg)

	m.AddRow(12, text.NewCol(12, "Code EAN: "+code.RawEAN, props.Text{
		Size:  headerFontSize,
		Style: fontstyle.Bold,
	}))

	for _, line := range []string{
		"Produit: " + product.Name,
		"Description: " + product.Description,
		"Quantité: " + strconv.Itoa(product.Quantity),
		"Localisation: " + product.Location,
	} {
		m.AddRow(10, text.NewCol(12, line, props.Text{Size: bodyFontSize}))
	}

	// Spacer so the barcode lands below the text block, print-label style.
	m.AddRow(30, col.New(12))
	m.AddRow(60, image.NewFromBytesCol(12, img.Data, extensionFor(img.Format), props.Rect{
		Percent: 100,
		Center:  true,
	}))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate label pdf: %w", err)
	}

	c.logger.Debug("label pdf composed", zap.String("ean", code.RawEAN), zap.Int("bytes", len(doc.GetBytes())))
	return doc.GetBytes(), nil
}

func extensionFor(format string) extension.Type {
	switch format {
	case "jpeg":
		return extension.Jpg
	case "gif":
		return extension.Type("gif")
	default:
		return extension.Png
	}
}
