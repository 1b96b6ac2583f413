package model

import "time"

// Product is a protein powder product line.
type Product struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Brand       string    `gorm:"size:255;not null;index" json:"brand"`
	ProductName string    `gorm:"size:255;not null" json:"product_name"`
	ProteinType *string   `gorm:"size:8" json:"protein_type"`
	ImageURL    *string   `gorm:"size:512" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Flavors     []Flavor  `gorm:"foreignKey:ProductID" json:"flavors,omitempty"`
}

// Flavor is one flavor of a product with its taste profile.
type Flavor struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	ProductID   string    `gorm:"size:64;not null;index" json:"product_id"`
	FlavorName  string    `gorm:"size:255;not null" json:"flavor_name"`
	SummaryText *string   `gorm:"type:text" json:"summary_text"`
	Sweetness   *string   `gorm:"size:16" json:"sweetness"`
	Fishy       *string   `gorm:"size:16" json:"fishy"`
	Artificial  *string   `gorm:"size:16" json:"artificial"`
	Bloating    *string   `gorm:"size:16" json:"bloating"`
	Water       *string   `gorm:"size:8" json:"water"`
	Milk        *string   `gorm:"size:8" json:"milk"`
	ImageURL    *string   `gorm:"size:512" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TasteKeyword is an entry of the taste keyword catalog.
type TasteKeyword struct {
	ID        string  `gorm:"primaryKey;size:64" json:"id"`
	Label     string  `gorm:"size:255;not null" json:"label"`
	IconURL   *string `gorm:"size:512" json:"icon_url"`
	SortOrder int     `gorm:"not null;default:0" json:"sort_order"`
}

// FlavorTasteKeyword links a flavor to a taste keyword, ordered by Position.
type FlavorTasteKeyword struct {
	FlavorID       string `gorm:"primaryKey;size:64" json:"flavor_id"`
	TasteKeywordID string `gorm:"primaryKey;size:64" json:"taste_keyword_id"`
	Position       int    `gorm:"not null;default:0" json:"position"`
}
