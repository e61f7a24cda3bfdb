package presentation

import (
	"time"

	"github.com/sunum-ai/copilot-backend/internal/shared"
)

type Presentation struct {
	ID      string `gorm:"primaryKey" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`

	Title       string `gorm:"not null" json:"title"`
	Language    string `gorm:"default:'auto'" json:"language"`
	AllowGuests bool   `gorm:"default:false" json:"allow_guests"`
	SlideCount  int    `gorm:"default:0" json:"slide_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Slide struct {
	ID             string `gorm:"primaryKey" json:"id"`
	PresentationID string `gorm:"not null;index:idx_presentation_page,unique" json:"presentation_id"`
	PageNumber     int    `gorm:"not null;index:idx_presentation_page,unique" json:"page_number"`

	Text      string        `json:"text"`
	Embedding shared.Vector `gorm:"type:json" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
