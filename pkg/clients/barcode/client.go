package barcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	// Register the decoders for the raster formats the rendering service emits.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/domain/models"
)

// ErrNotRendered signals that the rendering service did not produce a usable
// barcode image: transport failure, non-200 status or undecodable payload.
// The pipeline halts on it without persisting anything.
var ErrNotRendered = errors.New("barcode image not rendered")

// Renderer abstracts the remote barcode rendering capability so the pipeline
// never depends on the concrete service.
type Renderer interface {
	Render(ctx context.Context, code models.EncodedCode) (*models.BarcodeImage, error)
}

// APIClient is a resty-backed Renderer calling the TEC-IT style rendering
// endpoint.
type APIClient struct {
	httpClient *resty.Client
	baseURL    string
	symbology  string
	logger     *zap.Logger
}

// NewClient builds a rendering client from the provided configuration values.
func NewClient(cfg config.BarcodeConfig, logger *zap.Logger) *APIClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			return err != nil || resp.StatusCode() >= http.StatusInternalServerError
		})

	return &APIClient{
		httpClient: restyClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		symbology:  cfg.Symbology,
		logger:     logger,
	}
}

// Render fetches the rasterized barcode for the encoded payload. Every
// failure mode collapses into ErrNotRendered; callers only need to know
// whether an image exists.
func (c *APIClient) Render(ctx context.Context, code models.EncodedCode) (*models.BarcodeImage, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"data":          code.Payload,
			"code":          c.symbology,
			"translate-esc": "on",
		}).
		Get(c.baseURL)
	if err != nil {
		c.logger.Warn("barcode fetch failed", zap.String("payload", code.Payload), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNotRendered, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Warn("barcode service returned non-200",
			zap.String("payload", code.Payload),
			zap.Int("status", resp.StatusCode()))
		return nil, fmt.Errorf("%w: status %d", ErrNotRendered, resp.StatusCode())
	}

	body := resp.Body()
	imgConfig, format, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("barcode payload not decodable", zap.String("payload", code.Payload), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNotRendered, err)
	}

	return &models.BarcodeImage{
		Data:   body,
		Format: format,
		Width:  imgConfig.Width,
		Height: imgConfig.Height,
	}, nil
}
