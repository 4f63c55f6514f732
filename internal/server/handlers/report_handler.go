package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bloemp/stockreport/internal/domain/models"
	"github.com/bloemp/stockreport/internal/repository/mongodb"
	service "github.com/bloemp/stockreport/internal/service/report"
)

// ReportHandler exposes report generation and result recording over HTTP.
type ReportHandler struct {
	svc    service.Reporter
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc service.Reporter, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// GetTestReport serves the test report for a stock item. The default
// response is the rendered HTML document; ?format=json returns the
// reconciled rows instead.
func (h *ReportHandler) GetTestReport(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stock item id"})
		return
	}

	if c.DefaultQuery("format", "html") == "json" {
		rep, err := h.svc.BuildTestReport(c.Request.Context(), id)
		if err != nil {
			h.respondError(c, id, err)
			return
		}
		c.JSON(http.StatusOK, rep)
		return
	}

	document, err := h.svc.RenderTestReport(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, id, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(document))
}

// RecordTestResultRequest is the payload for recording a test outcome.
type RecordTestResultRequest struct {
	StockItem int64      `json:"stock_item" binding:"required"`
	TestName  string     `json:"test_name" binding:"required"`
	Result    bool       `json:"result"`
	Value     string     `json:"value"`
	User      string     `json:"user"`
	Date      *time.Time `json:"date"`
}

// RecordTestResult persists a new test result for a stock item.
func (h *ReportHandler) RecordTestResult(c *gin.Context) {
	var req RecordTestResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid test result payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result := models.TestResult{
		StockItemID: req.StockItem,
		TestName:    req.TestName,
		Result:      req.Result,
		Value:       req.Value,
		User:        req.User,
	}
	if req.Date != nil {
		result.Date = *req.Date
	}

	if err := h.svc.RecordTestResult(c.Request.Context(), result); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResult):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, mongodb.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "stock item not found"})
		default:
			h.logger.Error("failed recording test result", zap.Int64("stock_item", req.StockItem), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record test result"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

func (h *ReportHandler) respondError(c *gin.Context, id int64, err error) {
	if errors.Is(err, mongodb.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "stock item not found"})
		return
	}
	h.logger.Error("failed generating report", zap.Int64("stock_item", id), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
}
