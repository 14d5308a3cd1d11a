// Package storage owns persistence of users and contact messages.
package storage

import (
	"context"

	"github.com/willsigmon/boppa/internal/schema"
)

// Storage is the boundary between request handling and the database.
// Every method issues exactly one database round trip. Lookups return
// (nil, nil) when the row does not exist.
type Storage interface {
	GetUser(ctx context.Context, id int) (*schema.User, error)
	GetUserByUsername(ctx context.Context, username string) (*schema.User, error)
	CreateUser(ctx context.Context, in schema.InsertUser) (*schema.User, error)

	CreateContactMessage(ctx context.Context, in schema.InsertContactMessage) (*schema.ContactMessage, error)
	// ListContactMessages returns every message, newest first.
	ListContactMessages(ctx context.Context) ([]*schema.ContactMessage, error)
	GetContactMessage(ctx context.Context, id int) (*schema.ContactMessage, error)
}
