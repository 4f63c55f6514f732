package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloemp/stockreport/internal/config"
	"github.com/bloemp/stockreport/internal/domain/models"
	service "github.com/bloemp/stockreport/internal/service/report"
)

type mockRepo struct {
	testedIDs []int64
	snapshots []models.ReportSnapshot
}

func (m *mockRepo) GetPart(ctx context.Context, pk int64) (models.Part, error) {
	return models.Part{}, errors.New("not used")
}

func (m *mockRepo) GetStockItem(ctx context.Context, pk int64) (models.StockItem, error) {
	return models.StockItem{}, errors.New("not used")
}

func (m *mockRepo) ListTestTemplates(ctx context.Context, partID int64) ([]models.TestTemplate, error) {
	return nil, nil
}

func (m *mockRepo) ListTestResults(ctx context.Context, stockItemID int64) ([]models.TestResult, error) {
	return nil, nil
}

func (m *mockRepo) ListInstalledItems(ctx context.Context, parentID int64) ([]models.StockItem, error) {
	return nil, nil
}

func (m *mockRepo) InsertTestResult(ctx context.Context, result models.TestResult) error {
	return nil
}

func (m *mockRepo) SaveReportSnapshot(ctx context.Context, snapshot models.ReportSnapshot) error {
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *mockRepo) ListItemsTestedSince(ctx context.Context, since time.Time) ([]int64, error) {
	return m.testedIDs, nil
}

type mockReporter struct {
	built  []int64
	failOn int64
}

func (m *mockReporter) BuildTestReport(ctx context.Context, stockItemID int64) (*service.TestReport, error) {
	if m.failOn != 0 && stockItemID == m.failOn {
		return nil, errors.New("boom")
	}
	m.built = append(m.built, stockItemID)
	return &service.TestReport{
		Part: models.Part{PK: 1, Name: "Main Board"},
		Item: models.StockItem{PK: stockItemID},
		Rows: []models.TestRow{
			{Key: "burnin", Status: models.StatusPass},
			{Key: "visual", Status: models.StatusMissingRequired},
		},
		GeneratedAt: time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC),
	}, nil
}

func (m *mockReporter) RenderTestReport(ctx context.Context, stockItemID int64) (string, error) {
	return "", errors.New("not used")
}

func (m *mockReporter) RecordTestResult(ctx context.Context, result models.TestResult) error {
	return errors.New("not used")
}

func testConfig() config.ReportingConfig {
	return config.ReportingConfig{
		CronSchedule: "0 6 * * *",
		Timezone:     "UTC",
		DateLayout:   "2006-01-02",
	}
}

func TestRunDigest_SnapshotsEveryTestedItem(t *testing.T) {
	repo := &mockRepo{testedIDs: []int64{42, 43}}
	reporter := &mockReporter{}
	sched := NewScheduler(testConfig(), reporter, nil, repo, nil)

	sched.runDigest()

	assert.Equal(t, []int64{42, 43}, reporter.built)
	require.Len(t, repo.snapshots, 2)
	assert.Equal(t, int64(42), repo.snapshots[0].StockItemID)
	assert.Equal(t, 1, repo.snapshots[0].Passed)
	assert.Equal(t, 1, repo.snapshots[0].MissingRequired)
}

func TestRunDigest_ContinuesPastFailures(t *testing.T) {
	repo := &mockRepo{testedIDs: []int64{42, 43, 44}}
	reporter := &mockReporter{failOn: 43}
	sched := NewScheduler(testConfig(), reporter, nil, repo, nil)

	sched.runDigest()

	assert.Equal(t, []int64{42, 44}, reporter.built)
	assert.Len(t, repo.snapshots, 2)
}

func TestRunDigest_AdvancesWatermark(t *testing.T) {
	repo := &mockRepo{}
	sched := NewScheduler(testConfig(), &mockReporter{}, nil, repo, nil)

	before := sched.lastRun
	sched.runDigest()
	assert.True(t, sched.lastRun.After(before))
}
