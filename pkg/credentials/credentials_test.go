package credentials

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func generateKey(t *testing.T, passphrase string) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	var block *pem.Block
	if passphrase == "" {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", []byte(passphrase))
	}
	require.NoError(t, err)
	return pem.EncodeToMemory(block)
}

func TestSSHMatcher(t *testing.T) {
	key := generateKey(t, "")
	encrypted := generateKey(t, "hunter2")

	tests := []struct {
		name string
		cred *types.Credential
		want bool
	}{
		{
			name: "private key",
			cred: &types.Credential{Kind: types.CredentialSSHPrivateKey, Username: "jenkins", PrivateKey: key},
			want: true,
		},
		{
			name: "encrypted key with passphrase",
			cred: &types.Credential{Kind: types.CredentialSSHPrivateKey, Username: "jenkins", PrivateKey: encrypted, Passphrase: "hunter2"},
			want: true,
		},
		{
			name: "encrypted key without passphrase",
			cred: &types.Credential{Kind: types.CredentialSSHPrivateKey, Username: "jenkins", PrivateKey: encrypted},
			want: false,
		},
		{
			name: "garbage key",
			cred: &types.Credential{Kind: types.CredentialSSHPrivateKey, Username: "jenkins", PrivateKey: []byte("nope")},
			want: false,
		},
		{
			name: "username password",
			cred: &types.Credential{Kind: types.CredentialUsernamePassword, Username: "jenkins", Password: "pw"},
			want: true,
		},
		{
			name: "missing username",
			cred: &types.Credential{Kind: types.CredentialUsernamePassword, Password: "pw"},
			want: false,
		},
		{
			name: "secret text",
			cred: &types.Credential{Kind: types.CredentialSecretText, Username: "jenkins"},
			want: false,
		},
		{
			name: "nil",
			cred: nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SSHMatcher(tt.cred))
		})
	}
}

func TestVisible(t *testing.T) {
	assert.True(t, Visible(types.GlobalScope, "team/a"))
	assert.True(t, Visible("", "team/a"))
	assert.True(t, Visible("team", "team"))
	assert.True(t, Visible("team", "team/a"))
	assert.False(t, Visible("team", "teammate"))
	assert.False(t, Visible("team/a", "team"))
	assert.False(t, Visible("other", types.GlobalScope))
}

func newStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	store, err := storage.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreListerThroughDescriptor(t *testing.T) {
	store := newStore(t)
	key := generateKey(t, "")

	for _, cred := range []*types.Credential{
		{ID: "z-key", Kind: types.CredentialSSHPrivateKey, Scope: types.GlobalScope, Username: "jenkins", Description: "agents", PrivateKey: key},
		{ID: "a-pass", Kind: types.CredentialUsernamePassword, Scope: "team", Username: "build", Description: "agents", Password: "pw"},
		{ID: "other-team", Kind: types.CredentialUsernamePassword, Scope: "other", Username: "x", Password: "pw"},
		{ID: "token", Kind: types.CredentialSecretText, Scope: types.GlobalScope, Username: "bot"},
		{ID: "admin", Kind: types.CredentialUsernamePassword, Scope: types.GlobalScope, Username: "root"},
	} {
		require.NoError(t, store.CreateCredential(cred))
	}

	d := template.NewDescriptor(NewStoreLister(store), SSHMatcher)
	items, err := d.FillCredentialsIDItems(context.Background(), "team/web")
	require.NoError(t, err)

	assert.Equal(t, []template.CredentialItem{
		{ID: "admin", Label: "root"},
		{ID: "a-pass", Label: "build (agents)"},
		{ID: "z-key", Label: "jenkins (agents)"},
	}, items)
}

func TestStoreListerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStoreLister(newStore(t)).LookupCredentials(ctx, types.GlobalScope, SSHMatcher)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStoreListerRecordsLookupDuration(t *testing.T) {
	lister := NewStoreLister(newStore(t))

	_, err := lister.LookupCredentials(context.Background(), types.GlobalScope, SSHMatcher)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = lister.LookupCredentials(ctx, types.GlobalScope, SSHMatcher)
	require.Error(t, err)

	// one series per result
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.CredentialLookupDuration, "burrow_credential_lookup_duration_seconds"))

	for _, result := range []string{"ok", "error"} {
		observer, err := metrics.CredentialLookupDuration.GetMetricWithLabelValues(result)
		require.NoError(t, err)
		assert.Equal(t, 1, testutil.CollectAndCount(observer.(prometheus.Histogram)), result)
	}
}

func TestStoreResolver(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.CreateCredential(&types.Credential{ID: "k", Kind: types.CredentialUsernamePassword, Username: "u"}))
	r := NewStoreResolver(store)

	cred, err := r.Resolve(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "u", cred.Username)

	_, err = r.Resolve(context.Background(), "deleted")
	assert.True(t, errors.Is(err, ErrCredentialNotFound))

	_, err = r.Resolve(context.Background(), "")
	assert.True(t, errors.Is(err, ErrCredentialNotFound))
}

func TestSignerRejectsOtherKinds(t *testing.T) {
	_, err := Signer(&types.Credential{ID: "pw", Kind: types.CredentialUsernamePassword})
	assert.Error(t, err)
}
