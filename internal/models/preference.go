package models

import "time"

// Preference stores per-user UI settings, one row per user.
type Preference struct {
	UserID             string    `db:"user_id" json:"user_id"`
	Theme              string    `db:"theme" json:"theme"`
	Language           string    `db:"language" json:"language"`
	EmailNotifications bool      `db:"email_notifications" json:"email_notifications"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultPreference returns the settings applied before a user saves any.
func DefaultPreference(userID string) *Preference {
	return &Preference{
		UserID:             userID,
		Theme:              "light",
		Language:           "fr",
		EmailNotifications: true,
	}
}
