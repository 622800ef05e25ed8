package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventaire/internal/config"
	"github.com/mamadbah2/inventaire/internal/domain/models"
	"github.com/mamadbah2/inventaire/internal/service/inventory"
	barcodeclient "github.com/mamadbah2/inventaire/pkg/clients/barcode"
)

// InventoryHandler adapts the inventory pipeline to HTTP.
type InventoryHandler struct {
	svc    inventory.Service
	mode   config.LabelMode
	logger *zap.Logger
}

// NewInventoryHandler constructs the HTTP handler adapter.
func NewInventoryHandler(svc inventory.Service, mode config.LabelMode, logger *zap.Logger) *InventoryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryHandler{svc: svc, mode: mode, logger: logger}
}

// registerRequest is the form submission payload. Quantite is a pointer so
// that binding can tell zero from absent while still rejecting negatives.
type registerRequest struct {
	EAN          string `json:"ean" binding:"required"`
	Produit      string `json:"produit" binding:"required"`
	Description  string `json:"description"`
	Quantite     *int   `json:"quantite" binding:"required,gte=0"`
	Localisation string `json:"localisation"`
}

// Register runs the pipeline for one submission. In pdf mode the response is
// the label itself, offered as a download; in inline mode the created record.
// A store failure in pdf mode still returns the label, flagged through the
// X-Store-Status header.
func (h *InventoryHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	product := models.Product{
		Name:        req.Produit,
		Description: req.Description,
		Quantity:    *req.Quantite,
		Location:    req.Localisation,
	}

	result, err := h.svc.Register(c.Request.Context(), req.EAN, product)
	switch {
	case errors.Is(err, inventory.ErrEmptyCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean must not be empty"})
		return
	case errors.Is(err, barcodeclient.ErrNotRendered):
		h.logger.Warn("barcode rendering failed", zap.String("ean", req.EAN), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "barcode rendering failed"})
		return
	case err != nil:
		h.logger.Error("register pipeline failed", zap.String("ean", req.EAN), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register item"})
		return
	}

	if result.StoreErr != nil {
		c.Header("X-Store-Status", "failed")
	}

	if h.mode == config.LabelModePDF {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=etiquette_%s.pdf", req.EAN))
		c.Data(http.StatusOK, "application/pdf", result.Label)
		return
	}

	if result.StoreErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store record"})
		return
	}

	// The blob is persisted, not served; responses stay raster-free.
	record := result.Record
	record.Image = nil
	c.JSON(http.StatusCreated, record)
}

// Preview renders the barcode for an EAN without creating a record.
func (h *InventoryHandler) Preview(c *gin.Context) {
	ean := c.Query("ean")
	if ean == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean query parameter is required"})
		return
	}

	img, err := h.svc.Preview(c.Request.Context(), ean)
	switch {
	case errors.Is(err, inventory.ErrEmptyCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean must not be empty"})
		return
	case err != nil:
		h.logger.Warn("barcode preview failed", zap.String("ean", ean), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "barcode rendering failed"})
		return
	}

	c.Data(http.StatusOK, "image/"+img.Format, img.Data)
}

// List returns all inventory records.
func (h *InventoryHandler) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list inventory"})
		return
	}

	if records == nil {
		records = []models.InventoryRecord{}
	}
	c.JSON(http.StatusOK, records)
}

// ExportCSV offers the full listing as a CSV download.
func (h *InventoryHandler) ExportCSV(c *gin.Context) {
	data, err := h.svc.ExportCSV(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to export inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export inventory"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=inventaire.csv")
	c.Data(http.StatusOK, "text/csv", data)
}
