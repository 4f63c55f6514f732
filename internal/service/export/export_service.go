package export

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bloemp/stockreport/internal/domain/models"
	"github.com/bloemp/stockreport/internal/repository/sheets"
	"github.com/bloemp/stockreport/internal/service/report"
)

const (
	resultRowsRange = "TestResults!A:H"
	digestRange     = "Digest!A:G"
	dateFormat      = "2006-01-02"
)

// Service flattens reconciled reports into spreadsheet rows for the QA team.
type Service struct {
	repo   sheets.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a sheet export service instance.
func NewService(repository sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repository, logger: logger, now: time.Now}
}

// ExportReport appends one sheet row per reconciled test row.
func (s *Service) ExportReport(ctx context.Context, rep *report.TestReport) error {
	exportedAt := s.now().UTC().Format(dateFormat)

	for _, row := range rep.Rows {
		date := ""
		if !row.Date.IsZero() {
			date = row.Date.Format(dateFormat)
		}

		values := []interface{}{
			exportedAt,
			rep.Item.PK,
			rep.Item.Serial,
			row.Key,
			row.Label,
			string(row.Status),
			row.Value,
			date,
		}
		if err := s.repo.AppendRow(ctx, resultRowsRange, values); err != nil {
			return fmt.Errorf("export row %s for item %d: %w", row.Key, rep.Item.PK, err)
		}
	}

	s.logger.Debug("report exported",
		zap.Int64("stock_item", rep.Item.PK),
		zap.Int("rows", len(rep.Rows)))
	return nil
}

// ExportDigest appends a single summary row with the snapshot tallies.
func (s *Service) ExportDigest(ctx context.Context, snapshot models.ReportSnapshot) error {
	values := []interface{}{
		snapshot.GeneratedAt.Format(dateFormat),
		snapshot.StockItemID,
		snapshot.PartName,
		snapshot.Passed,
		snapshot.Failed,
		snapshot.MissingRequired,
		snapshot.Missing,
	}
	if err := s.repo.AppendRow(ctx, digestRange, values); err != nil {
		return fmt.Errorf("export digest for item %d: %w", snapshot.StockItemID, err)
	}
	return nil
}
