package inventory

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/domain/models"
	"github.com/mamadbah2/inventaire/internal/service/labeling"
	barcodeclient "github.com/mamadbah2/inventaire/pkg/clients/barcode"
)

type fakeRenderer struct {
	img      *models.BarcodeImage
	err      error
	rendered []models.EncodedCode
}

func (f *fakeRenderer) Render(_ context.Context, code models.EncodedCode) (*models.BarcodeImage, error) {
	f.rendered = append(f.rendered, code)
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

type fakeStore struct {
	inserted    []models.InventoryRecord
	insertErr   error
	records     []models.InventoryRecord
	lastExclude []string
}

func (f *fakeStore) Insert(_ context.Context, record models.InventoryRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *fakeStore) FindAll(_ context.Context, excludeFields ...string) ([]models.InventoryRecord, error) {
	f.lastExclude = excludeFields
	return f.records, nil
}

func barcodeFixture(t *testing.T) *models.BarcodeImage {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 60, 20))
	for x := 0; x < 60; x += 2 {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.Black)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &models.BarcodeImage{Data: buf.Bytes(), Format: "png", Width: 60, Height: 20}
}

func newTestService(t *testing.T, renderer *fakeRenderer, store *fakeStore, mode config.LabelMode) *PipelineService {
	t.Helper()
	svc := NewService(renderer, labeling.NewComposer(nil), store, mode, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC) }
	return svc
}

func TestRegister_PDFMode(t *testing.T) {
	renderer := &fakeRenderer{img: barcodeFixture(t)}
	store := &fakeStore{}
	svc := newTestService(t, renderer, store, config.LabelModePDF)

	product := models.Product{Name: "Widget", Description: "Blue widget", Quantity: 3, Location: "A-12"}
	result, err := svc.Register(context.Background(), "5012345678900", product)

	require.NoError(t, err)
	require.NoError(t, result.StoreErr)

	// The resolver saw the wrapped payload, not the raw EAN.
	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "(01)5012345678900", renderer.rendered[0].Payload)

	assert.True(t, bytes.HasPrefix(result.Label, []byte("%PDF")))
	assert.Nil(t, result.Record.Image)

	require.Len(t, store.inserted, 1)
	record := store.inserted[0]
	assert.Equal(t, "5012345678900", record.EAN)
	assert.Equal(t, "Widget", record.Product)
	assert.Equal(t, 3, record.Quantity)
	assert.Equal(t, time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC), record.CreatedAt)
}

func TestRegister_InlineMode(t *testing.T) {
	renderer := &fakeRenderer{img: barcodeFixture(t)}
	store := &fakeStore{}
	svc := newTestService(t, renderer, store, config.LabelModeInline)

	result, err := svc.Register(context.Background(), "123", models.Product{Name: "Widget", Quantity: 0})

	require.NoError(t, err)
	assert.Nil(t, result.Label)

	require.Len(t, store.inserted, 1)
	blob := store.inserted[0].Image
	require.NotEmpty(t, blob)

	decoded, err := png.Decode(bytes.NewReader(blob))
	require.NoError(t, err)
	assert.Equal(t, 60, decoded.Bounds().Dx())
	assert.Equal(t, 0, store.inserted[0].Quantity)
}

func TestRegister_RenderFailureSkipsPersistence(t *testing.T) {
	renderer := &fakeRenderer{err: barcodeclient.ErrNotRendered}
	store := &fakeStore{}
	svc := newTestService(t, renderer, store, config.LabelModePDF)

	result, err := svc.Register(context.Background(), "123", models.Product{Name: "Widget"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, barcodeclient.ErrNotRendered)
	assert.Empty(t, store.inserted)
}

func TestRegister_EmptyEAN(t *testing.T) {
	renderer := &fakeRenderer{img: barcodeFixture(t)}
	store := &fakeStore{}
	svc := newTestService(t, renderer, store, config.LabelModePDF)

	result, err := svc.Register(context.Background(), "  ", models.Product{Name: "Widget"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrEmptyCode)
	assert.Empty(t, renderer.rendered)
}

func TestRegister_StoreFailureKeepsLabel(t *testing.T) {
	renderer := &fakeRenderer{img: barcodeFixture(t)}
	store := &fakeStore{insertErr: errors.New("insert failed")}
	svc := newTestService(t, renderer, store, config.LabelModePDF)

	result, err := svc.Register(context.Background(), "123", models.Product{Name: "Widget"})

	require.NoError(t, err)
	assert.Error(t, result.StoreErr)
	assert.True(t, bytes.HasPrefix(result.Label, []byte("%PDF")), "label survives the store failure")
}

func TestList_InlineModeExcludesImage(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, &fakeRenderer{}, store, config.LabelModeInline)

	_, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Image"}, store.lastExclude)
}

func TestList_PDFModeExcludesNothing(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, &fakeRenderer{}, store, config.LabelModePDF)

	_, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, store.lastExclude)
}

func TestExportCSV(t *testing.T) {
	store := &fakeStore{records: []models.InventoryRecord{
		{
			EAN:       "5012345678900",
			Product:   "Widget",
			Quantity:  3,
			Location:  "A-12",
			CreatedAt: time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC),
		},
		{
			EAN:       "4000000000001",
			Product:   "Gadget, deluxe",
			Quantity:  0,
			CreatedAt: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		},
	}}
	svc := newTestService(t, &fakeRenderer{}, store, config.LabelModeInline)

	data, err := svc.ExportCSV(context.Background())

	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "EAN,Produit,Description,Quantité,Localisation,Date", lines[0])
	assert.Contains(t, lines[1], "5012345678900")
	assert.Contains(t, lines[1], "2026-08-30 14:05:00")
	// Commas inside fields stay quoted.
	assert.Contains(t, lines[2], `"Gadget, deluxe"`)
	assert.Equal(t, []string{"Image"}, store.lastExclude)
}

func TestPreview(t *testing.T) {
	renderer := &fakeRenderer{img: barcodeFixture(t)}
	svc := newTestService(t, renderer, &fakeStore{}, config.LabelModePDF)

	img, err := svc.Preview(context.Background(), "5012345678900")

	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	require.Len(t, renderer.rendered, 1)
	assert.Equal(t, "(01)5012345678900", renderer.rendered[0].Payload)
}
