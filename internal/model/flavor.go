package model

import (
	"database/sql/driver"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// TasteKeywordRef references a taste keyword by id. Label and icon are an
// optional cached copy and may be filled in from the catalog.
type TasteKeywordRef struct {
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// TasteKeywordRefs is a JSON array column of keyword references
type TasteKeywordRefs []TasteKeywordRef

// Value implements the driver.Valuer interface. It yields text so SQLite's
// JSON functions can read the column.
func (r TasteKeywordRefs) Value() (driver.Value, error) {
	if len(r) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface. Elements that are not objects
// are dropped and a non-array value scans as empty.
func (r *TasteKeywordRefs) Scan(value interface{}) error {
	var raw string
	switch v := value.(type) {
	case nil:
		*r = TasteKeywordRefs{}
		return nil
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		*r = TasteKeywordRefs{}
		return nil
	}

	parsed := gjson.Parse(raw)
	refs := TasteKeywordRefs{}
	if parsed.IsArray() {
		for _, item := range parsed.Array() {
			if !item.IsObject() {
				continue
			}
			refs = append(refs, TasteKeywordRef{
				ID:      strings.TrimSpace(item.Get("id").String()),
				Label:   item.Get("label").String(),
				IconURL: item.Get("icon_url").String(),
			})
		}
	}
	*r = refs
	return nil
}

// IDs returns the distinct non-empty keyword ids in order.
func (r TasteKeywordRefs) IDs() []string {
	seen := make(map[string]bool, len(r))
	var ids []string
	for _, ref := range r {
		if ref.ID == "" || seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		ids = append(ids, ref.ID)
	}
	return ids
}

// FlavorItem is one row of the flavor search view. Nullable attributes are
// pointers so that "unset" survives the round trip.
type FlavorItem struct {
	ID            string           `gorm:"column:id;primaryKey" json:"id"`
	Brand         string           `gorm:"column:brand" json:"brand"`
	ProductName   string           `gorm:"column:product_name" json:"product_name"`
	FlavorName    string           `gorm:"column:flavor_name" json:"flavor_name"`
	SummaryText   *string          `gorm:"column:summary_text" json:"summary_text"`
	Sweetness     *string          `gorm:"column:sweetness" json:"sweetness"`
	Fishy         *string          `gorm:"column:fishy" json:"fishy"`
	Artificial    *string          `gorm:"column:artificial" json:"artificial"`
	Bloating      *string          `gorm:"column:bloating" json:"bloating"`
	Water         *string          `gorm:"column:water" json:"water"`
	Milk          *string          `gorm:"column:milk" json:"milk"`
	ImageURL      *string          `gorm:"column:image_url" json:"image_url"`
	ProteinType   *string          `gorm:"column:protein_type" json:"protein_type"`
	TasteKeywords TasteKeywordRefs `gorm:"column:taste_keywords" json:"taste_keywords"`
}

// TableName maps FlavorItem onto the read-only search view.
func (FlavorItem) TableName() string {
	return "flavor_search_view"
}

// Title is the display title: brand, product name and flavor name.
func (f FlavorItem) Title() string {
	return f.Brand + " " + f.ProductName + " " + f.FlavorName
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
