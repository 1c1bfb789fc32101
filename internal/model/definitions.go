package model

import (
	"time"
)

// Standard time object for Gorm-managed tables
type DBTime struct {
	CreatedAt time.Time `jsonapi:"attr,created_at,omitempty"`
	UpdatedAt time.Time `jsonapi:"attr,updated_at,omitempty"`
}

// all tables owned by this service, in migration order
func tables() []interface{} {
	return []interface{}{
		&Subscriber{},
		&Option{},
		&Form{},
	}
}
