package metrics

import (
	"testing"
	"time"

	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCollect(t *testing.T) {
	resetHealth()

	dir := t.TempDir()
	store, err := storage.NewBoltStore(dir)
	require.NoError(t, err)

	for name, capStr := range map[string]string{"capped": "4", "open": ""} {
		tmpl, err := template.New(types.TemplateConfig{Image: name, InstanceCapStr: capStr})
		require.NoError(t, err)
		require.NoError(t, store.CreateTemplate(name, tmpl))
	}
	require.NoError(t, store.CreateCredential(&types.Credential{ID: "c1", Kind: types.CredentialSecretText}))
	require.NoError(t, store.Close())

	NewCollector(openDir(dir), 0).Collect()

	assert.Equal(t, float64(2), testutil.ToFloat64(TemplatesTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(CredentialsTotal))
	assert.Equal(t, float64(4), testutil.ToFloat64(TemplateCapacity.WithLabelValues("capped")))
	assert.Equal(t, float64(-1), testutil.ToFloat64(TemplateCapacity.WithLabelValues("open")))
	assert.Equal(t, "ready", GetReadiness().Status)
}

func TestCollectorReleasesDatabase(t *testing.T) {
	resetHealth()
	dir := t.TempDir()

	NewCollector(openDir(dir), 0).Collect()
	assert.Equal(t, "ready", GetReadiness().Status)

	// The collector must not keep the file lock between snapshots.
	store, err := storage.NewBoltStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestCollectorReportsLockedStore(t *testing.T) {
	resetHealth()
	dir := t.TempDir()

	saved := storage.OpenTimeout
	storage.OpenTimeout = 50 * time.Millisecond
	defer func() { storage.OpenTimeout = saved }()

	holder, err := storage.NewBoltStore(dir)
	require.NoError(t, err)
	defer holder.Close()

	NewCollector(openDir(dir), 0).Collect()

	ready := GetReadiness()
	assert.Equal(t, "not_ready", ready.Status)
	assert.Contains(t, ready.Components["storage"], "in use")
}

func openDir(dir string) storage.Opener {
	return func() (storage.Store, error) {
		store, err := storage.NewBoltStore(dir)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}
