package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cuemby/burrow/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const templatesYAML = `apiVersion: burrow/v1
kind: AgentTemplate
metadata:
  name: ubuntu
spec:
  image: ubuntu:20.04
  labels: docker linux
  credentialsId: agent-pass
  dns: "8.8.8.8  8.8.4.4"
---
apiVersion: burrow/v1
kind: AgentTemplate
metadata:
  name: capped
spec:
  image: alpine
  instanceCap: "3"
  credentialsId: agent-pass
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTemplateWorkflow(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	file := filepath.Join(dir, "templates.yaml")
	require.NoError(t, os.WriteFile(file, []byte(templatesYAML), 0600))

	out, err := run(t, "template", "apply", "-f", file, "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Template applied: ubuntu (Image of ubuntu:20.04)")
	assert.Contains(t, out, "Template applied: capped")

	out, err = run(t, "template", "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "unbounded")
	assert.Contains(t, out, "docker linux")

	out, err = run(t, "template", "show", "ubuntu", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "remoteFs: /home/jenkins")
	assert.Contains(t, out, "dns: 8.8.8.8 8.8.4.4")

	_, err = run(t, "template", "plan", "capped", "--running", "0", "--data-dir", dataDir)
	assert.Error(t, err, "credential does not exist yet")

	passwordFile := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("pw\n"), 0600))
	_, err = run(t, "credential", "add", "agent-pass", "--kind", "username-password",
		"--username", "jenkins", "--password-file", passwordFile, "--data-dir", dataDir)
	require.NoError(t, err)

	out, err = run(t, "template", "credentials", "--scope", "global", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "agent-pass")

	out, err = run(t, "template", "plan", "capped", "--running", "0", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "image: alpine")
	assert.Contains(t, out, "username: jenkins")

	_, err = run(t, "template", "plan", "capped", "--running", "3", "--data-dir", dataDir)
	assert.Error(t, err)

	_, err = run(t, "template", "delete", "capped", "--data-dir", dataDir)
	require.NoError(t, err)
	_, err = run(t, "template", "show", "capped", "--data-dir", dataDir)
	assert.Error(t, err)
}

func TestDecodeTemplates(t *testing.T) {
	named, err := decodeTemplates([]byte(templatesYAML))
	require.NoError(t, err)
	require.Len(t, named, 2)
	assert.Equal(t, "ubuntu", named[0].name)
	assert.Equal(t, []string{"8.8.8.8", "8.8.4.4"}, named[0].tmpl.DNSHosts())
	assert.Equal(t, 3, named[1].tmpl.InstanceCap().Int())
}

func TestDecodeTemplatesRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad cap", yaml: "kind: AgentTemplate\nmetadata:\n  name: x\nspec:\n  image: a\n  instanceCap: lots\n"},
		{name: "wrong kind", yaml: "kind: Service\nmetadata:\n  name: x\nspec:\n  image: a\n"},
		{name: "missing name", yaml: "kind: AgentTemplate\nspec:\n  image: a\n"},
		{name: "empty", yaml: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeTemplates([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestCredentialAddReadsSecrets(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	passwordFile := filepath.Join(dir, "password")
	require.NoError(t, os.WriteFile(passwordFile, []byte("from-file\r\n"), 0600))

	_, err := runWithInput(t, "from-stdin\n", "credential", "add", "stdin-pass", "--kind", "username-password",
		"--username", "build", "--password-file", "-", "--passphrase-file", "", "--data-dir", dataDir)
	require.NoError(t, err)

	_, err = run(t, "credential", "add", "file-pass", "--kind", "username-password",
		"--username", "build", "--password-file", passwordFile, "--passphrase-file", "", "--data-dir", dataDir)
	require.NoError(t, err)

	_, err = run(t, "credential", "add", "both", "--kind", "username-password",
		"--password-file", "-", "--passphrase-file", "-", "--data-dir", dataDir)
	assert.Error(t, err)

	_, err = run(t, "credential", "add", "missing", "--kind", "username-password",
		"--password-file", filepath.Join(dir, "nope"), "--passphrase-file", "", "--data-dir", dataDir)
	assert.Error(t, err)

	store, err := storage.NewBoltStore(dataDir)
	require.NoError(t, err)
	defer store.Close()

	cred, err := store.GetCredential("stdin-pass")
	require.NoError(t, err)
	assert.Equal(t, "from-stdin", cred.Password)

	cred, err = store.GetCredential("file-pass")
	require.NoError(t, err)
	assert.Equal(t, "from-file", cred.Password)

	_, err = store.GetCredential("both")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
