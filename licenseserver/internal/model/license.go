package model

import "time"

type License struct {
	Key          string     `gorm:"column:license_key;primaryKey" json:"license"`
	OwnerID      *string    `gorm:"column:owner_id;index" json:"owner,omitempty"`
	CreatedAt    time.Time  `json:"created"`
	DurationDays int        `gorm:"column:duration_days;not null" json:"duration"`
	ExpiresAt    *time.Time `gorm:"column:expires_at" json:"expiry,omitempty"`
	BoundIP      *string    `gorm:"column:bound_ip" json:"ip,omitempty"`
	Suspended    bool       `gorm:"not null" json:"suspended"`
}

func (License) TableName() string {
	return "licenses"
}

func (l License) Claimed() bool {
	return l.OwnerID != nil
}

// Activated reports whether the license has been used once; the first
// authentication starts the clock and binds the caller's address.
func (l License) Activated() bool {
	return l.ExpiresAt != nil
}

func (l License) Active(now time.Time) bool {
	return l.ExpiresAt != nil && !now.After(*l.ExpiresAt) && !l.Suspended
}

func (l License) ValidFor(ip string, now time.Time) bool {
	return l.Active(now) && l.BoundIP != nil && *l.BoundIP == ip
}
