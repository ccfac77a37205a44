package models

import "time"

type Classification struct {
	ID   int64  `json:"classification_id"`
	Name string `json:"classification_name"`
}

// Vehicle is one inventory row. ClassificationName is filled by joins only.
type Vehicle struct {
	ID                 int64  `json:"inv_id"`
	ClassificationID   int64  `json:"classification_id"`
	ClassificationName string `json:"classification_name,omitempty"`
	Make               string `json:"inv_make"`
	Model              string `json:"inv_model"`
	Year               int    `json:"inv_year"`
	Description        string `json:"inv_description"`
	Image              string `json:"inv_image"`
	Thumbnail          string `json:"inv_thumbnail"`
	Price              int64  `json:"inv_price"`
	Miles              int64  `json:"inv_miles"`
	Color              string `json:"inv_color"`
}

// Title is the display name used in page headings.
func (v *Vehicle) Title() string {
	return v.Make + " " + v.Model
}

// Favorite links an account to a saved vehicle.
type Favorite struct {
	AccountID   int64
	InventoryID int64
	CreatedAt   time.Time
}
