package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DoseInstance is one concrete, timed intake of a drug. Every instance
// generated from the same treatment shares a GroupID; name, dose amount and
// notes are copied into each instance so a dose stays displayable on its own.
type DoseInstance struct {
	ID           uuid.UUID `gorm:"primaryKey"`
	GroupID      uuid.UUID `gorm:"index"`
	Name         string
	DoseAmount   string
	Notes        string
	Indication   string
	ScheduledAt  time.Time `gorm:"index"`
	IsDone       bool      `gorm:"default:false"`
	DurationDays int       // 0 means the treatment is continuous
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (d *DoseInstance) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Continuous reports whether the instance belongs to an open-ended treatment.
func (d *DoseInstance) Continuous() bool {
	return d.DurationDays == 0
}
