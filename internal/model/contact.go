package model

import "time"

type Contact struct {
	ID             int64     `json:"id"`
	TenantID       int64     `json:"tenant_id"`
	Name           string    `json:"name"`
	Identity       string    `json:"identity"`
	ExternalUserID string    `json:"external_user_id"`
	IsOnline       bool      `json:"is_online"`
	Notes          []string  `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ContactSnapshot is the copy of a contact embedded in its conversation at
// creation time.
type ContactSnapshot struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Identity string `json:"identity"`
	IsOnline bool   `json:"is_online"`
}

func (c *Contact) Snapshot() ContactSnapshot {
	return ContactSnapshot{
		ID:       c.ID,
		Name:     c.Name,
		Identity: c.Identity,
		IsOnline: c.IsOnline,
	}
}
