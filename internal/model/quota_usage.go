package model

import (
	"time"

	"gorm.io/gorm"
)

// QuotaUsage accumulates the quota cost charged on one calendar day across
// all credentials. Exactly one row exists per day; it is upserted, never split.
type QuotaUsage struct {
	gorm.Model
	Date         time.Time `gorm:"uniqueIndex;not null" json:"date"`
	CurrentUsage int       `gorm:"default:0;not null" json:"currentUsage"`
}
