package models

import (
	"strconv"
	"time"
)

// dateLayout matches the timestamp format used in CSV exports and Sheets rows.
const dateLayout = "2006-01-02 15:04:05"

// EncodedCode pairs a raw EAN with its symbology payload. The payload is
// derived once at creation and never changes afterwards.
type EncodedCode struct {
	RawEAN  string
	Payload string
}

// BarcodeImage is a rendered barcode raster fetched from the rendering
// service. It lives only for the duration of one pipeline run.
type BarcodeImage struct {
	Data   []byte
	Format string // "png", "jpeg" or "gif", as reported by the decoder
	Width  int
	Height int
}

// Product carries the operator-supplied metadata for an inventory entry.
// Quantity is validated at the form boundary; the domain treats it as a
// precondition.
type Product struct {
	Name        string
	Description string
	Quantity    int
	Location    string
}

// InventoryRecord is the persisted inventory entry. Field keys are stable:
// they must round-trip through insert and find unchanged, `_id` excepted.
// Image is only populated in inline label mode.
type InventoryRecord struct {
	EAN         string    `bson:"EAN" json:"EAN"`
	Product     string    `bson:"Produit" json:"Produit"`
	Description string    `bson:"Description" json:"Description"`
	Quantity    int       `bson:"Quantité" json:"Quantité"`
	Location    string    `bson:"Localisation" json:"Localisation"`
	CreatedAt   time.Time `bson:"Date" json:"Date"`
	Image       []byte    `bson:"Image,omitempty" json:"Image,omitempty"`
}

// NewInventoryRecord assembles a record from the pipeline's outputs. It is a
// pure construction: no input is mutated and no side effect occurs. The
// imageBlob is attached only when non-nil (inline label mode).
func NewInventoryRecord(code EncodedCode, product Product, now time.Time, imageBlob []byte) InventoryRecord {
	return InventoryRecord{
		EAN:         code.RawEAN,
		Product:     product.Name,
		Description: product.Description,
		Quantity:    product.Quantity,
		Location:    product.Location,
		CreatedAt:   now,
		Image:       imageBlob,
	}
}

// CSVHeader returns the column names used by the listing export and the
// Sheets mirror. The image blob is never exported.
func CSVHeader() []string {
	return []string{"EAN", "Produit", "Description", "Quantité", "Localisation", "Date"}
}

// CSVRow renders the record as one export row, matching CSVHeader ordering.
func (r InventoryRecord) CSVRow() []string {
	return []string{
		r.EAN,
		r.Product,
		r.Description,
		strconv.Itoa(r.Quantity),
		r.Location,
		r.CreatedAt.Format(dateLayout),
	}
}
