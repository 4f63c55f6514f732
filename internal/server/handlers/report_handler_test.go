package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloemp/stockreport/internal/domain/models"
	"github.com/bloemp/stockreport/internal/repository/mongodb"
	service "github.com/bloemp/stockreport/internal/service/report"
)

type mockReporter struct {
	buildFn  func(ctx context.Context, stockItemID int64) (*service.TestReport, error)
	renderFn func(ctx context.Context, stockItemID int64) (string, error)
	recordFn func(ctx context.Context, result models.TestResult) error

	recorded []models.TestResult
}

func (m *mockReporter) BuildTestReport(ctx context.Context, stockItemID int64) (*service.TestReport, error) {
	return m.buildFn(ctx, stockItemID)
}

func (m *mockReporter) RenderTestReport(ctx context.Context, stockItemID int64) (string, error) {
	return m.renderFn(ctx, stockItemID)
}

func (m *mockReporter) RecordTestResult(ctx context.Context, result models.TestResult) error {
	m.recorded = append(m.recorded, result)
	if m.recordFn != nil {
		return m.recordFn(ctx, result)
	}
	return nil
}

func newTestRouter(svc service.Reporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewReportHandler(svc, nil)
	r.GET("/api/stock/:id/test-report", handler.GetTestReport)
	r.POST("/api/test-results", handler.RecordTestResult)
	return r
}

func TestGetTestReport_HTML(t *testing.T) {
	svc := &mockReporter{
		renderFn: func(ctx context.Context, id int64) (string, error) {
			assert.Equal(t, int64(42), id)
			return "<html>report</html>", nil
		},
	}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stock/42/test-report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Equal(t, "<html>report</html>", w.Body.String())
}

func TestGetTestReport_JSON(t *testing.T) {
	svc := &mockReporter{
		buildFn: func(ctx context.Context, id int64) (*service.TestReport, error) {
			return &service.TestReport{
				Part: models.Part{PK: 1, Name: "Main Board"},
				Item: models.StockItem{PK: 42},
				Rows: []models.TestRow{{Key: "burnin", Status: models.StatusPass}},
			}, nil
		},
	}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stock/42/test-report?format=json", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var payload service.TestReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	assert.Equal(t, "Main Board", payload.Part.Name)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, models.StatusPass, payload.Rows[0].Status)
}

func TestGetTestReport_BadID(t *testing.T) {
	router := newTestRouter(&mockReporter{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stock/abc/test-report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTestReport_NotFound(t *testing.T) {
	svc := &mockReporter{
		renderFn: func(ctx context.Context, id int64) (string, error) {
			return "", mongodb.ErrNotFound
		},
	}
	router := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/stock/999/test-report", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordTestResult_Created(t *testing.T) {
	svc := &mockReporter{}
	router := newTestRouter(svc)

	body := `{"stock_item": 42, "test_name": "Burn In", "result": true, "value": "48h", "user": "alice"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test-results", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.recorded, 1)
	assert.Equal(t, int64(42), svc.recorded[0].StockItemID)
	assert.Equal(t, "Burn In", svc.recorded[0].TestName)
	assert.True(t, svc.recorded[0].Result)
	assert.True(t, svc.recorded[0].Date.IsZero(), "date left to the service when omitted")
}

func TestRecordTestResult_ExplicitDate(t *testing.T) {
	svc := &mockReporter{}
	router := newTestRouter(svc)

	body := `{"stock_item": 42, "test_name": "Burn In", "date": "2026-08-03T12:00:00Z"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test-results", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, svc.recorded, 1)
	assert.Equal(t, time.Date(2026, 8, 3, 12, 0, 0, 0, time.UTC), svc.recorded[0].Date)
}

func TestRecordTestResult_MissingFields(t *testing.T) {
	router := newTestRouter(&mockReporter{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test-results", strings.NewReader(`{"result": true}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordTestResult_UnknownItem(t *testing.T) {
	svc := &mockReporter{
		recordFn: func(ctx context.Context, result models.TestResult) error {
			return mongodb.ErrNotFound
		},
	}
	router := newTestRouter(svc)

	body := `{"stock_item": 999, "test_name": "Burn In"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test-results", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordTestResult_InvalidResult(t *testing.T) {
	svc := &mockReporter{
		recordFn: func(ctx context.Context, result models.TestResult) error {
			return service.ErrInvalidResult
		},
	}
	router := newTestRouter(svc)

	body := `{"stock_item": 42, "test_name": "---"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/test-results", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
