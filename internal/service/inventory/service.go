package inventory

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/domain/models"
	"github.com/mamadbah2/inventaire/internal/repository/mongodb"
	"github.com/mamadbah2/inventaire/internal/service/barcode"
	barcodeclient "github.com/mamadbah2/inventaire/pkg/clients/barcode"
)

// ErrEmptyCode rejects submissions with no EAN before the pipeline runs.
var ErrEmptyCode = errors.New("ean code must not be empty")

// imageField is the persisted key of the inline blob, excluded from listings
// and exports.
const imageField = "Image"

// Service describes the operations the HTTP layer and the scheduler can
// perform against the inventory pipeline.
type Service interface {
	Register(ctx context.Context, rawEAN string, product models.Product) (*Result, error)
	Preview(ctx context.Context, rawEAN string) (*models.BarcodeImage, error)
	List(ctx context.Context) ([]models.InventoryRecord, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

// LabelComposer is the slice of the labeling package the pipeline needs.
type LabelComposer interface {
	ComposePDF(code models.EncodedCode, img *models.BarcodeImage, product models.Product) ([]byte, error)
	EncodeInline(img *models.BarcodeImage) ([]byte, error)
}

// Result carries the outcome of one successful pipeline run. Label is only
// populated in pdf mode. StoreErr is set when the record could not be
// persisted; the rendered label survives so the caller can still offer the
// download.
type Result struct {
	Record   models.InventoryRecord
	Label    []byte
	StoreErr error
}

// PipelineService runs the register pipeline: encode, render, compose, build,
// persist. One linear blocking sequence per submission.
type PipelineService struct {
	renderer barcodeclient.Renderer
	composer LabelComposer
	store    mongodb.Repository
	mode     config.LabelMode
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a new pipeline service instance.
func NewService(renderer barcodeclient.Renderer, composer LabelComposer, store mongodb.Repository, mode config.LabelMode, logger *zap.Logger) *PipelineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PipelineService{
		renderer: renderer,
		composer: composer,
		store:    store,
		mode:     mode,
		now:      time.Now,
		logger:   logger,
	}
}

// Register runs the full pipeline for one form submission. A rendering
// failure surfaces as barcodeclient.ErrNotRendered and nothing is persisted.
// A store failure is reported through Result.StoreErr, not as a returned
// error, because the label already exists at that point.
func (s *PipelineService) Register(ctx context.Context, rawEAN string, product models.Product) (*Result, error) {
	if strings.TrimSpace(rawEAN) == "" {
		return nil, ErrEmptyCode
	}

	code := barcode.Encode(rawEAN)

	img, err := s.renderer.Render(ctx, code)
	if err != nil {
		return nil, err
	}

	var label, blob []byte
	switch s.mode {
	case config.LabelModeInline:
		blob, err = s.composer.EncodeInline(img)
	default:
		label, err = s.composer.ComposePDF(code, img, product)
	}
	if err != nil {
		return nil, fmt.Errorf("compose label: %w", err)
	}

	record := models.NewInventoryRecord(code, product, s.now(), blob)

	result := &Result{Record: record, Label: label}
	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.Error("failed to persist inventory record", zap.String("ean", rawEAN), zap.Error(err))
		result.StoreErr = err
		return result, nil
	}

	s.logger.Info("inventory record created",
		zap.String("ean", rawEAN),
		zap.String("produit", product.Name),
		zap.Int("quantite", product.Quantity))
	return result, nil
}

// Preview encodes and renders a barcode without touching the store, mirroring
// the pre-submission preview in the operator UI.
func (s *PipelineService) Preview(ctx context.Context, rawEAN string) (*models.BarcodeImage, error) {
	if strings.TrimSpace(rawEAN) == "" {
		return nil, ErrEmptyCode
	}
	return s.renderer.Render(ctx, barcode.Encode(rawEAN))
}

// List returns every inventory record. In inline mode the image blob is
// excluded from the projection; listings never carry raster data.
func (s *PipelineService) List(ctx context.Context) ([]models.InventoryRecord, error) {
	return s.store.FindAll(ctx, s.listExclusions()...)
}

// ExportCSV renders the full listing as comma-separated text with the stable
// French header row.
func (s *PipelineService) ExportCSV(ctx context.Context) ([]byte, error) {
	records, err := s.store.FindAll(ctx, s.listExclusions()...)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(models.CSVHeader()); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record.CSVRow()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *PipelineService) listExclusions() []string {
	if s.mode == config.LabelModeInline {
		return []string{imageField}
	}
	return nil
}
