package model

import "time"

// Tenant is provisioned out-of-band; ingestion only reads it.
type Tenant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BotID     string    `json:"bot_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
