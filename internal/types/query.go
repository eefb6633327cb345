package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Query is a natural-language question tied to a video, the unit of
// annotation work. QueryTypes is an ordered JSON list of category tags.
type Query struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	VideoID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"video_id"`
	QueryText  string         `gorm:"column:query_text;type:text;not null" json:"query_text"`
	Status     QueryStatus    `gorm:"column:status;size:50;default:unverified" json:"status"`
	QueryTypes datatypes.JSON `gorm:"column:query_types" json:"query_types"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Annotations []*Annotation `gorm:"foreignKey:QueryID;references:ID" json:"annotations,omitempty"`
}

func (Query) TableName() string { return "queries" }

// DefaultQueryTypes is applied when a query is created or migrated without
// explicit tags.
func DefaultQueryTypes() datatypes.JSON {
	return datatypes.JSON([]byte(`["negative"]`))
}
