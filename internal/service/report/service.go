package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bloemp/stockreport/internal/domain/models"
	"github.com/bloemp/stockreport/internal/repository/mongodb"
	"github.com/bloemp/stockreport/internal/repository/rediscache"
	"github.com/bloemp/stockreport/pkg/clients/media"
)

// ErrInvalidResult indicates a recorded result payload that cannot be
// persisted (e.g. missing test name).
var ErrInvalidResult = errors.New("invalid test result")

// Reporter describes the operations the HTTP layer and scheduler consume.
type Reporter interface {
	BuildTestReport(ctx context.Context, stockItemID int64) (*TestReport, error)
	RenderTestReport(ctx context.Context, stockItemID int64) (string, error)
	RecordTestResult(ctx context.Context, result models.TestResult) error
}

// TestReport bundles the reconciled rows with the entities they describe.
type TestReport struct {
	Part        models.Part           `json:"part"`
	Item        models.StockItem      `json:"stock_item"`
	Rows        []models.TestRow      `json:"rows"`
	Installed   []models.InstalledRow `json:"installed_items,omitempty"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Snapshot tallies the report's rows per status for archival.
func (r *TestReport) Snapshot() models.ReportSnapshot {
	snapshot := models.ReportSnapshot{
		ID:          uuid.NewString(),
		StockItemID: r.Item.PK,
		PartName:    r.Part.FullName(),
		Serial:      r.Item.Serial,
		Total:       len(r.Rows),
		GeneratedAt: r.GeneratedAt,
	}

	for _, row := range r.Rows {
		switch row.Status {
		case models.StatusPass:
			snapshot.Passed++
		case models.StatusFail:
			snapshot.Failed++
		case models.StatusMissingRequired:
			snapshot.MissingRequired++
		case models.StatusMissing:
			snapshot.Missing++
		}
	}

	return snapshot
}

// Service assembles and renders stock item test reports. Cache and media
// client are optional; a nil cache disables report caching and a nil media
// client leaves image slots empty.
type Service struct {
	repo     mongodb.Repository
	cache    rediscache.Cache
	media    media.Client
	renderer *Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a report service instance.
func NewService(repo mongodb.Repository, cache rediscache.Cache, mediaClient media.Client, renderer *Renderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		cache:    cache,
		media:    mediaClient,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildTestReport fetches the item's data and reconciles templates against
// recorded results into display rows.
func (s *Service) BuildTestReport(ctx context.Context, stockItemID int64) (*TestReport, error) {
	item, err := s.repo.GetStockItem(ctx, stockItemID)
	if err != nil {
		return nil, err
	}

	part, err := s.repo.GetPart(ctx, item.PartID)
	if err != nil {
		return nil, err
	}

	templates, err := s.repo.ListTestTemplates(ctx, part.PK)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListTestResults(ctx, item.PK)
	if err != nil {
		return nil, err
	}

	results := LatestResults(history)
	keys := UnionKeys(templates, results)
	rows := Reconcile(keys, TemplateMap(templates), results)

	installed, err := s.buildInstalledRows(ctx, item.PK)
	if err != nil {
		return nil, err
	}

	return &TestReport{
		Part:        part,
		Item:        item,
		Rows:        rows,
		Installed:   installed,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// RenderTestReport returns the HTML report for an item, serving from cache
// when possible.
func (s *Service) RenderTestReport(ctx context.Context, stockItemID int64) (string, error) {
	if s.cache != nil {
		cached, hit, err := s.cache.GetReport(ctx, stockItemID)
		if err != nil {
			s.logger.Warn("report cache lookup failed", zap.Int64("stock_item", stockItemID), zap.Error(err))
		} else if hit {
			s.logger.Debug("report served from cache", zap.Int64("stock_item", stockItemID))
			return cached, nil
		}
	}

	rep, err := s.BuildTestReport(ctx, stockItemID)
	if err != nil {
		return "", err
	}

	data := ReportData{
		Part:        rep.Part,
		Item:        rep.Item,
		Rows:        rep.Rows,
		Installed:   rep.Installed,
		GeneratedAt: rep.GeneratedAt,
	}
	data.ImageURI = s.resolveImage(ctx, rep.Part.Image)

	document, err := s.renderer.Render(data)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, stockItemID, document); err != nil {
			s.logger.Warn("report cache store failed", zap.Int64("stock_item", stockItemID), zap.Error(err))
		}
	}

	return document, nil
}

// RecordTestResult validates and persists a test outcome, then drops any
// cached report for the item.
func (s *Service) RecordTestResult(ctx context.Context, result models.TestResult) error {
	if result.TestName == "" || models.TestKey(result.TestName) == "" {
		return fmt.Errorf("%w: test name must contain at least one letter or digit", ErrInvalidResult)
	}

	// Confirm the target exists so callers get a 404 rather than a silent
	// orphan row.
	if _, err := s.repo.GetStockItem(ctx, result.StockItemID); err != nil {
		return err
	}

	if result.Date.IsZero() {
		result.Date = s.now().UTC()
	}

	if err := s.repo.InsertTestResult(ctx, result); err != nil {
		return err
	}

	s.logger.Info("test result recorded",
		zap.Int64("stock_item", result.StockItemID),
		zap.String("test", models.TestKey(result.TestName)),
		zap.Bool("result", result.Result))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, result.StockItemID); err != nil {
			s.logger.Warn("report cache invalidation failed", zap.Int64("stock_item", result.StockItemID), zap.Error(err))
		}
	}

	return nil
}

func (s *Service) buildInstalledRows(ctx context.Context, parentID int64) ([]models.InstalledRow, error) {
	items, err := s.repo.ListInstalledItems(ctx, parentID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, nil
	}

	rows := make([]models.InstalledRow, 0, len(items))
	for _, sub := range items {
		subPart, err := s.repo.GetPart(ctx, sub.PartID)
		if err != nil {
			return nil, err
		}

		row := models.InstalledRow{
			StockItemID: sub.PK,
			PartName:    subPart.FullName(),
			Image:       s.resolveImage(ctx, subPart.Image),
			Serialized:  sub.Serialized(),
		}
		if sub.Serialized() {
			row.Serial = sub.Serial
		} else {
			row.Quantity = sub.DisplayQuantity()
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// resolveImage is best-effort: a missing or unreachable image never blocks
// the report.
func (s *Service) resolveImage(ctx context.Context, path string) string {
	if s.media == nil || path == "" {
		return ""
	}

	uri, err := s.media.FetchImageDataURI(ctx, path)
	if err != nil {
		s.logger.Debug("part image unavailable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return uri
}
