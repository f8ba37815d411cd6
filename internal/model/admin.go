package model

import (
	"time"
)

type AdminSession struct {
	TokenHash string     `db:"token_hash" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	ExpiresAt *time.Time `db:"expires_at" json:"expiresAt,omitempty"`
	IPAddress *string    `db:"ip_address" json:"ipAddress,omitempty"`
}

type CreateAdminSessionParams struct {
	TokenHash string
	CreatedAt time.Time
	ExpiresAt *time.Time
	IPAddress *string
}
