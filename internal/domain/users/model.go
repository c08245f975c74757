package users

import "time"

type User struct {
	ID             int64
	Name           string
	WhatsAppNumber string // canonical digits, 254XXXXXXXXX
	PreferredTime  string // "HH:MM", naive wall clock in the app timezone
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
