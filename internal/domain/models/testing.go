package models

import (
	"strings"
	"time"
	"unicode"
)

// TestTemplate declares, at the part level, a test that stock items of the
// part may undergo. Required templates flag missing results distinctly.
type TestTemplate struct {
	PartID   int64  `bson:"part" json:"part"`
	TestName string `bson:"test_name" json:"test_name"`
	Required bool   `bson:"required" json:"required"`
}

// Key returns the reconciliation key derived from the test name.
func (t TestTemplate) Key() string {
	return TestKey(t.TestName)
}

// TestResult is one recorded outcome of a test performed on a stock item.
// Several results may exist for the same key; the most recent is
// authoritative.
type TestResult struct {
	StockItemID int64     `bson:"stock_item" json:"stock_item"`
	TestName    string    `bson:"test_name" json:"test_name"`
	Result      bool      `bson:"result" json:"result"`
	Value       string    `bson:"value,omitempty" json:"value,omitempty"`
	User        string    `bson:"user,omitempty" json:"user,omitempty"`
	Date        time.Time `bson:"date" json:"date"`
}

// Key returns the reconciliation key derived from the recorded test name.
func (r TestResult) Key() string {
	return TestKey(r.TestName)
}

// TestKey normalizes a test name into its reconciliation key: lowercase,
// letters and digits only. "Firmware Version" and "firmware-version" map to
// the same key, so results survive cosmetic renames of their template.
func TestKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
