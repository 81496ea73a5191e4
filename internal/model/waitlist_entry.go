package model

import "time"

// WaitlistEntry is write-once: entries are never updated or deleted.
type WaitlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"size:320;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (WaitlistEntry) TableName() string {
	return "punch_waitlist"
}
