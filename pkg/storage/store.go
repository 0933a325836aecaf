package storage

import (
	"errors"

	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
)

var (
	// ErrNotFound is returned when a key is missing from its bucket
	ErrNotFound = errors.New("not found")

	// ErrDatabaseInUse is returned when another process holds the database lock
	ErrDatabaseInUse = errors.New("database is in use by another burrow process")
)

// Store defines the interface for template and credential persistence
type Store interface {
	// Templates
	CreateTemplate(name string, tmpl *template.Template) error
	GetTemplate(name string) (*template.Template, error)
	ListTemplates() ([]*NamedTemplate, error)
	UpdateTemplate(name string, tmpl *template.Template) error
	DeleteTemplate(name string) error

	// Credentials
	CreateCredential(cred *types.Credential) error
	GetCredential(id string) (*types.Credential, error)
	ListCredentials() ([]*types.Credential, error)
	DeleteCredential(id string) error

	// Utility
	Close() error
}

// Opener opens a Store on demand. Long-running callers use it to hold the
// database only for the duration of one operation.
type Opener func() (Store, error)

// NamedTemplate pairs a stored template with its key
type NamedTemplate struct {
	Name     string
	Template *template.Template
}
