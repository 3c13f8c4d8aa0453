package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// AirportAlias maps an informal name, nickname or common misspelling to an
// airport. Alias is stored lower-cased so lookups can use plain equality.
type AirportAlias struct {
	ID         string    `gorm:"column:id;primaryKey;type:varchar(36)"`
	Alias      string    `gorm:"column:alias;type:varchar(150);not null;index"`
	AirportID  string    `gorm:"column:airport_id;type:varchar(36);not null;index"`
	Airport    Airport   `gorm:"foreignKey:AirportID"`
	Confidence *float64  `gorm:"column:confidence;type:numeric(3,2)"`
	Source     string    `gorm:"column:source;type:varchar(50)"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (AirportAlias) TableName() string {
	return "airport_aliases"
}

func (a *AirportAlias) BeforeCreate(tx *gormlib.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
