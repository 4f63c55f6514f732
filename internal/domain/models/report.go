package models

import "time"

// RowStatus is the semantic display state of a reconciled test row. The four
// states must stay visually distinguishable in any rendering.
type RowStatus string

const (
	StatusPass            RowStatus = "pass"
	StatusFail            RowStatus = "fail"
	StatusMissingRequired RowStatus = "missing-required"
	StatusMissing         RowStatus = "missing"
)

// RowSource records which side of the template/result lookup produced a row.
type RowSource string

const (
	// SourceTemplateAndResult: the key is templated and has a recorded result.
	SourceTemplateAndResult RowSource = "template+result"
	// SourceTemplateOnly: templated but never performed.
	SourceTemplateOnly RowSource = "template"
	// SourceResultOnly: a result exists for a key no longer templated.
	SourceResultOnly RowSource = "result"
	// SourceOrphan: the key matches neither map. Should not arise from
	// well-formed callers but must render, not crash.
	SourceOrphan RowSource = "orphan"
)

// TestRow is one reconciled line of the test-result table.
type TestRow struct {
	Key      string    `json:"key"`
	Source   RowSource `json:"source"`
	Label    string    `json:"label"`
	Required bool      `json:"required"`
	Status   RowStatus `json:"status"`
	Value    string    `json:"value,omitempty"`
	User     string    `json:"user,omitempty"`
	Date     time.Time `json:"date,omitzero"`
}

// HasResult reports whether the row carries a recorded outcome.
func (r TestRow) HasResult() bool {
	return r.Status == StatusPass || r.Status == StatusFail
}

// InstalledRow is one line of the installed sub-items table.
type InstalledRow struct {
	StockItemID int64  `json:"stock_item"`
	PartName    string `json:"part_name"`
	Image       string `json:"image,omitempty"`
	Serialized  bool   `json:"serialized"`
	Serial      string `json:"serial,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
}

// ReportSnapshot is the archived per-status tally of a generated report,
// stored for QA trend history.
type ReportSnapshot struct {
	ID              string    `bson:"_id" json:"id"`
	StockItemID     int64     `bson:"stock_item" json:"stock_item"`
	PartName        string    `bson:"part_name" json:"part_name"`
	Serial          string    `bson:"serial,omitempty" json:"serial,omitempty"`
	Total           int       `bson:"total" json:"total"`
	Passed          int       `bson:"passed" json:"passed"`
	Failed          int       `bson:"failed" json:"failed"`
	MissingRequired int       `bson:"missing_required" json:"missing_required"`
	Missing         int       `bson:"missing" json:"missing"`
	GeneratedAt     time.Time `bson:"generated_at" json:"generated_at"`
}
