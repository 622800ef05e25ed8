package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/domain/models"
)

// sheetRange is where mirrored inventory rows land; one row per record,
// columns matching models.CSVHeader.
const sheetRange = "Inventaire!A:F"

// Repository defines the operations supported by the Google Sheets mirror.
type Repository interface {
	AppendRecords(ctx context.Context, records []models.InventoryRecord) error
}

// GoogleSheetRepository implements the Repository interface using the official Google Sheets API.
type GoogleSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewGoogleSheetRepository builds a Google Sheets backed repository instance.
func NewGoogleSheetRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (Repository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		logger:        logger,
	}, nil
}

// AppendRecords appends one row per record to the mirror sheet. The image
// blob is never mirrored.
func (r *GoogleSheetRepository) AppendRecords(ctx context.Context, records []models.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	values := make([][]interface{}, 0, len(records))
	for _, record := range records {
		row := record.CSVRow()
		cells := make([]interface{}, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		values = append(values, cells)
	}

	payload := &sheetsapi.ValueRange{Values: values}

	call := r.service.Spreadsheets.Values.Append(r.spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	if _, err := call.Do(); err != nil {
		return fmt.Errorf("append rows into range %s: %w", sheetRange, err)
	}

	r.logger.Debug("records mirrored to sheet", zap.Int("count", len(records)))
	return nil
}
