package model

import "time"

// Merchant represents a shop backend integrating with the gateway.
type Merchant struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
