package models

// Part is a product definition. Stock items instantiate a part; test
// templates declare the tests its stock items may undergo.
type Part struct {
	PK          int64  `bson:"_id" json:"pk"`
	Name        string `bson:"name" json:"name"`
	IPN         string `bson:"ipn,omitempty" json:"ipn,omitempty"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Image       string `bson:"image,omitempty" json:"image,omitempty"`
}

// FullName is the display name used in report headers.
func (p Part) FullName() string {
	if p.IPN == "" {
		return p.Name
	}
	return p.IPN + " | " + p.Name
}
