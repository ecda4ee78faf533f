package models

import "time"

// LoginState tracks failed-login counters and the fingerprint of the
// last successful login for one account. It is mutated only through the
// lockout policy and read by the login flow to reject attempts while
// the account is locked.
type LoginState struct {
	UserID         uint       `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	FailedAttempts int        `gorm:"not null;default:0" json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	// Fingerprint of the most recent successful login. HasFingerprint
	// distinguishes "never logged in" from empty fields.
	HasFingerprint bool      `gorm:"not null;default:false" json:"has_fingerprint"`
	LastIP         string    `gorm:"size:45" json:"last_ip"`
	LastDeviceType string    `gorm:"size:32" json:"last_device_type"`
	LastDeviceID   string    `gorm:"size:64" json:"last_device_id"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (LoginState) TableName() string {
	return "login_states"
}
