package template

import (
	"context"
	"fmt"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
)

// DescriptorDisplayName is how configuration screens label templates
const DescriptorDisplayName = "Docker Template"

// Matcher reports whether a credential can be used for agent authentication
type Matcher func(cred *types.Credential) bool

// CredentialItem is one selectable credential
type CredentialItem struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
}

// CredentialLister looks up credentials visible from scope that satisfy match.
// Implementations may block on the credential store.
type CredentialLister interface {
	LookupCredentials(ctx context.Context, scope string, match Matcher) ([]CredentialItem, error)
}

// Descriptor exposes template metadata to configuration front ends. The
// provisioning path never uses it.
type Descriptor struct {
	lister  CredentialLister
	matcher Matcher
}

// NewDescriptor creates a descriptor that enumerates credentials through
// lister, keeping those accepted by matcher.
func NewDescriptor(lister CredentialLister, matcher Matcher) *Descriptor {
	return &Descriptor{lister: lister, matcher: matcher}
}

// DisplayName returns the name of the template kind
func (d *Descriptor) DisplayName() string {
	return DescriptorDisplayName
}

// FillCredentialsIDItems returns candidate credential IDs for the
// credentialsId field, in the order the lister returns them. No caching.
func (d *Descriptor) FillCredentialsIDItems(ctx context.Context, scope string) ([]CredentialItem, error) {
	logger := log.WithComponent("template")

	items, err := d.lister.LookupCredentials(ctx, scope, d.matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to list credentials for scope %s: %w", scope, err)
	}

	logger.Debug().
		Str("scope", scope).
		Int("candidates", len(items)).
		Msg("Credential candidates listed")
	return items, nil
}
