package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	// Bucket names
	bucketTemplates   = []byte("templates")
	bucketCredentials = []byte("credentials")
)

// OpenTimeout bounds how long NewBoltStore waits for another process to
// release the database file lock
var OpenTimeout = time.Second

// BoltStore implements Store interface using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore creates a new BoltDB-backed store in dataDir
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "burrow.db")

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: OpenTimeout})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, fmt.Errorf("%s: %w", dbPath, ErrDatabaseInUse)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketTemplates, bucketCredentials} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	logger := log.WithComponent("storage")
	logger.Debug().Str("path", dbPath).Msg("Database opened")

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Template operations

// CreateTemplate stores tmpl under name, replacing any previous value.
// Only the raw configuration is written.
func (s *BoltStore) CreateTemplate(name string, tmpl *template.Template) error {
	if name == "" {
		return fmt.Errorf("template name is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTemplates)
		data, err := json.Marshal(tmpl)
		if err != nil {
			return err
		}
		return b.Put([]byte(name), data)
	})
}

// GetTemplate loads a template, re-deriving its label set
func (s *BoltStore) GetTemplate(name string) (*template.Template, error) {
	var tmpl template.Template
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTemplates)
		data := b.Get([]byte(name))
		if data == nil {
			return fmt.Errorf("template %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &tmpl)
	})
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// ListTemplates returns all templates ordered by name
func (s *BoltStore) ListTemplates() ([]*NamedTemplate, error) {
	var templates []*NamedTemplate
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTemplates)
		return b.ForEach(func(k, v []byte) error {
			var tmpl template.Template
			if err := json.Unmarshal(v, &tmpl); err != nil {
				return fmt.Errorf("template %s: %w", k, err)
			}
			templates = append(templates, &NamedTemplate{Name: string(k), Template: &tmpl})
			return nil
		})
	})
	return templates, err
}

func (s *BoltStore) UpdateTemplate(name string, tmpl *template.Template) error {
	return s.CreateTemplate(name, tmpl) // Same as create (upsert)
}

func (s *BoltStore) DeleteTemplate(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTemplates)
		if b.Get([]byte(name)) == nil {
			return fmt.Errorf("template %s: %w", name, ErrNotFound)
		}
		return b.Delete([]byte(name))
	})
}

// Credential operations
func (s *BoltStore) CreateCredential(cred *types.Credential) error {
	if cred.ID == "" {
		return fmt.Errorf("credential id is required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		data, err := json.Marshal(cred)
		if err != nil {
			return err
		}
		return b.Put([]byte(cred.ID), data)
	})
}

func (s *BoltStore) GetCredential(id string) (*types.Credential, error) {
	var cred types.Credential
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("credential %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &cred)
	})
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

func (s *BoltStore) ListCredentials() ([]*types.Credential, error) {
	var creds []*types.Credential
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		return b.ForEach(func(k, v []byte) error {
			var cred types.Credential
			if err := json.Unmarshal(v, &cred); err != nil {
				return err
			}
			creds = append(creds, &cred)
			return nil
		})
	})
	return creds, err
}

func (s *BoltStore) DeleteCredential(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketCredentials)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("credential %s: %w", id, ErrNotFound)
		}
		return b.Delete([]byte(id))
	})
}
