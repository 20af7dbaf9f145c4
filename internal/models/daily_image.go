package models

import "time"

// DateLayout is the calendar date format used for generation dates and filenames.
const DateLayout = "2006-01-02"

// DailyImage is the single generated image for a calendar date.
type DailyImage struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	GenerationDate  string    `gorm:"type:varchar(10);not null;uniqueIndex" json:"generation_date"`
	FoodCombination string    `gorm:"type:text;not null" json:"food_combination"`
	PublicURL       string    `gorm:"size:255;not null" json:"public_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// DailyImageResponse is the API shape of a DailyImage. ImageURL mirrors
// PublicURL for clients that read image_url.
type DailyImageResponse struct {
	ID              uint   `json:"id"`
	GenerationDate  string `json:"generation_date"`
	FoodCombination string `json:"food_combination"`
	PublicURL       string `json:"public_url"`
	ImageURL        string `json:"image_url"`
}

// ToResponse converts the record to its API shape.
func (d DailyImage) ToResponse() DailyImageResponse {
	return DailyImageResponse{
		ID:              d.ID,
		GenerationDate:  d.GenerationDate,
		FoodCombination: d.FoodCombination,
		PublicURL:       d.PublicURL,
		ImageURL:        d.PublicURL,
	}
}
