package database

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/proteinpick/backend/internal/model"
)

// Catalog is a complete catalog snapshot as loaded by the seeder.
type Catalog struct {
	Products []model.Product            `json:"products"`
	Keywords []model.TasteKeyword       `json:"taste_keywords"`
	Flavors  []model.Flavor             `json:"flavors"`
	Links    []model.FlavorTasteKeyword `json:"flavor_taste_keywords"`
}

// SeedCatalog upserts every row of c in one transaction. Existing rows with the
// same primary key are overwritten.
func SeedCatalog(ctx context.Context, db *gorm.DB, c Catalog) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// a new session per statement so each model gets its own schema
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true}).Session(&gorm.Session{})

		for i := range c.Products {
			p := c.Products[i]
			p.Flavors = nil
			if err := upsert.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
			}
		}
		for i := range c.Keywords {
			if err := upsert.Create(&c.Keywords[i]).Error; err != nil {
				return fmt.Errorf("failed to seed taste keyword %s: %w", c.Keywords[i].ID, err)
			}
		}
		for i := range c.Flavors {
			if err := upsert.Create(&c.Flavors[i]).Error; err != nil {
				return fmt.Errorf("failed to seed flavor %s: %w", c.Flavors[i].ID, err)
			}
		}
		for i := range c.Links {
			if err := upsert.Create(&c.Links[i]).Error; err != nil {
				return fmt.Errorf("failed to link flavor %s: %w", c.Links[i].FlavorID, err)
			}
		}
		return nil
	})
}

// LoadCatalog reads a catalog snapshot from a JSON file.
func LoadCatalog(path string) (Catalog, error) {
	var c Catalog
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read catalog file: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return c, nil
}
