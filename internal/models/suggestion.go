package models

import "strings"

// SuggestionStatus defines lifecycle states for suggestions.
type SuggestionStatus string

const (
	// SuggestionStatusPending indicates the suggestion is awaiting review.
	SuggestionStatusPending SuggestionStatus = "pending"
	// SuggestionStatusApproved indicates the suggestion was accepted.
	SuggestionStatusApproved SuggestionStatus = "approved"
	// SuggestionStatusRejected indicates the suggestion was denied.
	SuggestionStatusRejected SuggestionStatus = "rejected"
)

// ParseSuggestionStatus validates a status string.
func ParseSuggestionStatus(raw string) (SuggestionStatus, bool) {
	switch s := SuggestionStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case SuggestionStatusPending, SuggestionStatusApproved, SuggestionStatusRejected:
		return s, true
	}
	return "", false
}

// Suggestion is a user-submitted food or preparation awaiting moderation.
type Suggestion struct {
	ID     uint             `gorm:"primaryKey" json:"id"`
	Item   string           `gorm:"size:255;not null" json:"item"`
	Status SuggestionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Date   string           `gorm:"size:64;not null" json:"date"`
	Type   CatalogKind      `gorm:"type:varchar(20);not null;default:'food'" json:"type"`
}
