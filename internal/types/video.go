package types

import (
	"time"

	"github.com/google/uuid"
)

// Video is the top-level media record being annotated. Its status value set
// is configuration, not a closed enum; see services.VideoStatusSet.
type Video struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	URL         string    `gorm:"column:url;size:2048;not null;index" json:"url"`
	Title       string    `gorm:"column:title;size:500;not null" json:"title"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Topic       string    `gorm:"column:topic;size:200" json:"topic"`
	Duration    int       `gorm:"column:duration" json:"duration"`
	Notes       string    `gorm:"column:notes;type:text" json:"notes"`
	Annotator   string    `gorm:"column:annotator;size:200" json:"annotator"`
	Status      string    `gorm:"column:status;size:50;default:pending" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Queries []*Query `gorm:"foreignKey:VideoID;references:ID" json:"queries,omitempty"`
}

func (Video) TableName() string { return "videos" }
