package credentials

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
)

// ErrCredentialNotFound is returned when a template references a credential
// the store no longer holds
var ErrCredentialNotFound = errors.New("credential not found")

// SSHMatcher accepts credentials an SSH agent launcher can authenticate with:
// a username/password pair, or a private key that parses (with its
// passphrase, if any).
func SSHMatcher(cred *types.Credential) bool {
	if cred == nil || cred.Username == "" {
		return false
	}
	switch cred.Kind {
	case types.CredentialUsernamePassword:
		return true
	case types.CredentialSSHPrivateKey:
		_, err := Signer(cred)
		return err == nil
	default:
		return false
	}
}

// Signer parses the private key of an ssh-private-key credential
func Signer(cred *types.Credential) (ssh.Signer, error) {
	if cred.Kind != types.CredentialSSHPrivateKey {
		return nil, fmt.Errorf("credential %s is %s, not %s", cred.ID, cred.Kind, types.CredentialSSHPrivateKey)
	}
	if cred.Passphrase != "" {
		return ssh.ParsePrivateKeyWithPassphrase(cred.PrivateKey, []byte(cred.Passphrase))
	}
	return ssh.ParsePrivateKey(cred.PrivateKey)
}

// Visible reports whether a credential stored at credScope can be seen from
// scope. Global credentials are visible everywhere; folder credentials are
// visible from the folder and everything below it.
func Visible(credScope, scope string) bool {
	if credScope == "" || credScope == types.GlobalScope {
		return true
	}
	if scope == credScope {
		return true
	}
	return strings.HasPrefix(scope, credScope+"/")
}

// StoreLister implements template.CredentialLister on top of a Store
type StoreLister struct {
	store storage.Store
}

// NewStoreLister creates a lister backed by store
func NewStoreLister(store storage.Store) *StoreLister {
	return &StoreLister{store: store}
}

// LookupCredentials lists credentials visible from scope and accepted by
// match, ordered by description then ID.
func (l *StoreLister) LookupCredentials(ctx context.Context, scope string, match template.Matcher) ([]template.CredentialItem, error) {
	timer := metrics.NewTimer()

	items, err := l.lookup(ctx, scope, match)
	result := "ok"
	if err != nil {
		result = "error"
	}
	timer.ObserveDurationVec(metrics.CredentialLookupDuration, result)
	return items, err
}

func (l *StoreLister) lookup(ctx context.Context, scope string, match template.Matcher) ([]template.CredentialItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	creds, err := l.store.ListCredentials()
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	var matched []*types.Credential
	for _, cred := range creds {
		if !Visible(cred.Scope, scope) {
			continue
		}
		if match != nil && !match(cred) {
			continue
		}
		matched = append(matched, cred)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Description != matched[j].Description {
			return matched[i].Description < matched[j].Description
		}
		return matched[i].ID < matched[j].ID
	})

	items := make([]template.CredentialItem, 0, len(matched))
	for _, cred := range matched {
		items = append(items, template.CredentialItem{ID: cred.ID, Label: itemLabel(cred)})
	}
	return items, nil
}

func itemLabel(cred *types.Credential) string {
	if cred.Description == "" {
		return cred.Username
	}
	return fmt.Sprintf("%s (%s)", cred.Username, cred.Description)
}

// StoreResolver resolves credential IDs at launch time
type StoreResolver struct {
	store storage.Store
}

// NewStoreResolver creates a resolver backed by store
func NewStoreResolver(store storage.Store) *StoreResolver {
	return &StoreResolver{store: store}
}

// Resolve returns the credential for id, or an error wrapping
// ErrCredentialNotFound when the store does not hold it.
func (r *StoreResolver) Resolve(ctx context.Context, id string) (*types.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("no credential configured: %w", ErrCredentialNotFound)
	}

	cred, err := r.store.GetCredential(id)
	if errors.Is(err, storage.ErrNotFound) {
		logger := log.WithCredentialID(id)
		logger.Warn().Msg("Template references a missing credential")
		return nil, fmt.Errorf("credential %s: %w", id, ErrCredentialNotFound)
	}
	if err != nil {
		return nil, err
	}
	return cred, nil
}
