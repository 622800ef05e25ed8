package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

// The persisted keys are a stable contract: documents written by earlier
// deployments must keep decoding, and every field must survive an
// insert/find cycle untouched.
func TestInventoryRecord_BSONRoundTrip(t *testing.T) {
	record := InventoryRecord{
		EAN:         "5012345678900",
		Product:     "Widget",
		Description: "Blue widget",
		Quantity:    3,
		Location:    "A-12",
		CreatedAt:   time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
		Image:       []byte{0x89, 0x50, 0x4e, 0x47},
	}

	data, err := bson.Marshal(record)
	require.NoError(t, err)

	var decoded InventoryRecord
	require.NoError(t, bson.Unmarshal(data, &decoded))

	assert.Equal(t, record.EAN, decoded.EAN)
	assert.Equal(t, record.Product, decoded.Product)
	assert.Equal(t, record.Description, decoded.Description)
	assert.Equal(t, record.Quantity, decoded.Quantity)
	assert.Equal(t, record.Location, decoded.Location)
	assert.Equal(t, record.Image, decoded.Image)
	// BSON datetimes lose the Go location but not the instant.
	assert.True(t, record.CreatedAt.Equal(decoded.CreatedAt))
}

func TestInventoryRecord_StableBSONKeys(t *testing.T) {
	record := InventoryRecord{EAN: "123", Product: "Widget", Quantity: 1, CreatedAt: time.Now()}

	data, err := bson.Marshal(record)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(data, &doc))

	for _, key := range []string{"EAN", "Produit", "Description", "Quantité", "Localisation", "Date"} {
		assert.Contains(t, doc, key)
	}
	assert.NotContains(t, doc, "Image", "empty image must be omitted")
}
