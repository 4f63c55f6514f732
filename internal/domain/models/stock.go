package models

import "github.com/shopspring/decimal"

// StockItem is a tracked unit or batch of a part. A serialized item carries
// a serial number and no meaningful quantity; a non-serialized item carries
// a quantity. BelongsTo links an installed sub-item to its parent item.
type StockItem struct {
	PK        int64   `bson:"_id" json:"pk"`
	PartID    int64   `bson:"part" json:"part"`
	Location  string  `bson:"location,omitempty" json:"location,omitempty"`
	Serial    string  `bson:"serial,omitempty" json:"serial,omitempty"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
	BelongsTo int64   `bson:"belongs_to,omitempty" json:"belongs_to,omitempty"`
}

// Serialized reports whether the item is tracked by serial number.
func (s StockItem) Serialized() bool {
	return s.Serial != ""
}

// DisplayQuantity renders the quantity for reports.
func (s StockItem) DisplayQuantity() string {
	return FormatQuantity(s.Quantity)
}

// FormatQuantity renders a stock quantity without trailing zeros, so a
// quantity of 4.0 displays as "4" and 4.50 as "4.5".
func FormatQuantity(quantity float64) string {
	return decimal.NewFromFloat(quantity).String()
}
