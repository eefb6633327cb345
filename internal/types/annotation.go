package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Annotation is a timestamped, described interval answering a query.
// Timestamps are HH:MM:SS strings, matching how annotators enter them.
type Annotation struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QueryID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"query_id"`
	StartTimestamp string         `gorm:"column:start_timestamp;size:8;default:00:00:00" json:"start_timestamp"`
	EndTimestamp   string         `gorm:"column:end_timestamp;size:8;default:00:00:00" json:"end_timestamp"`
	Notes          string         `gorm:"column:notes;type:text" json:"notes"`
	IsAnnotated    AnnotationFlag `gorm:"column:is_annotated;size:20;default:unannotated" json:"is_annotated"`

	// Extended labeling fields, optional.
	AnnotationType  AnnotationType `gorm:"column:annotation_type;size:20" json:"annotation_type,omitempty"`
	BoundingBoxes   datatypes.JSON `gorm:"column:bounding_boxes" json:"bounding_boxes,omitempty"`
	FrameNumber     *int           `gorm:"column:frame_number" json:"frame_number,omitempty"`
	ObjectCount     *int           `gorm:"column:object_count" json:"object_count,omitempty"`
	ObjectType      string         `gorm:"column:object_type;size:200" json:"object_type,omitempty"`
	ConfidenceScore *float64       `gorm:"column:confidence_score" json:"confidence_score,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Annotation) TableName() string { return "annotations" }
