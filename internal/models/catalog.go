package models

import "strings"

// CatalogKind identifies one of the two catalog tables.
type CatalogKind string

const (
	// CatalogFood is the foods catalog.
	CatalogFood CatalogKind = "food"
	// CatalogPreparation is the preparations catalog.
	CatalogPreparation CatalogKind = "preparation"
)

// CatalogKinds lists every catalog in the order duplicate results are reported.
var CatalogKinds = []CatalogKind{CatalogFood, CatalogPreparation}

// ParseCatalogKind accepts singular and plural names, case-insensitively.
func ParseCatalogKind(raw string) (CatalogKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "food", "foods":
		return CatalogFood, true
	case "preparation", "preparations":
		return CatalogPreparation, true
	}
	return "", false
}

// Table returns the table backing the catalog.
func (k CatalogKind) Table() string {
	switch k {
	case CatalogFood:
		return "foods"
	case CatalogPreparation:
		return "preparations"
	}
	return ""
}

// ListName is the plural label used in duplicate check results.
func (k CatalogKind) ListName() string {
	return k.Table()
}

// Food is a catalog entry naming something to eat.
type Food struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

// Preparation is a catalog entry naming a way to prepare food.
type Preparation struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

// CatalogItem is the API shape shared by both catalogs.
type CatalogItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Duplicate reports a word that already exists in a catalog.
type Duplicate struct {
	Word string `json:"word"`
	List string `json:"list"`
}
