package models

// Menu categories.
const (
	CategoryGaming = "gaming"
	CategoryCafe   = "cafe"
)

// MenuItem is a catalog entry the client renders and orders from.
// Orders snapshot the price at add-time, so edits here never rewrite
// open tabs.
type MenuItem struct {
	BaseModel
	ProductID int     `gorm:"uniqueIndex" json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Category  string  `json:"category"`
}
