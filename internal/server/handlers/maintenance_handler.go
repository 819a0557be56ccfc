package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hts-life/presswatch/internal/domain/models"
	"github.com/hts-life/presswatch/internal/service/maintenance"
)

// MaintenanceHandler exposes maintenance checks and the operator reset over HTTP.
type MaintenanceHandler struct {
	svc    *maintenance.Service
	logger *zap.Logger
}

// NewMaintenanceHandler constructs the HTTP handler adapter.
func NewMaintenanceHandler(svc *maintenance.Service, logger *zap.Logger) *MaintenanceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaintenanceHandler{svc: svc, logger: logger}
}

// Check triggers one maintenance evaluation for a stock code.
func (h *MaintenanceHandler) Check(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid check payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	status, err := h.svc.Check(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("maintenance check failed", zap.String("stock_code", req.StockCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "maintenance check failed"})
		return
	}

	if status == nil {
		c.JSON(http.StatusOK, gin.H{"message": "no production recorded today", "stock_code": req.StockCode})
		return
	}

	c.JSON(http.StatusOK, status)
}

// Reset zeroes the maintenance counter after a physical maintenance event.
func (h *MaintenanceHandler) Reset(c *gin.Context) {
	var req models.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid reset payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.Reset(c.Request.Context(), req.StockCode); err != nil {
		h.logger.Error("maintenance reset failed", zap.String("stock_code", req.StockCode), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "maintenance reset failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "maintenance counter reset", "stock_code": req.StockCode})
}
