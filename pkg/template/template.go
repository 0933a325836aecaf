package template

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/types"
)

// DefaultRemoteFs is the agent root used when a template leaves remoteFs blank
const DefaultRemoteFs = "/home/jenkins"

// Template describes how to provision one class of container-backed agent.
// A Template is immutable once New returns and safe for concurrent reads.
type Template struct {
	cfg         types.TemplateConfig
	remoteFs    string
	instanceCap Capacity
	dnsHosts    []string
	volumes     []string
	labelSet    LabelSet
}

// New normalizes cfg into a Template. The only failure is a non-empty
// instanceCap that is not a 32-bit base-10 integer, reported as
// *ConfigurationError.
func New(cfg types.TemplateConfig) (*Template, error) {
	instanceCap, err := parseCapacity(cfg.InstanceCapStr)
	if err != nil {
		return nil, err
	}

	t := &Template{
		cfg:         cfg,
		remoteFs:    cfg.RemoteFs,
		instanceCap: instanceCap,
		dnsHosts:    ParseList(cfg.DNSString),
		volumes:     ParseList(cfg.VolumesString),
	}
	if strings.TrimSpace(t.remoteFs) == "" {
		t.remoteFs = DefaultRemoteFs
	}
	t.rehydrate()

	logger := log.WithComponent("template")
	logger.Debug().
		Str("image", cfg.Image).
		Str("credentials_id", cfg.CredentialsID).
		Str("instance_cap", instanceCap.String()).
		Int("labels", t.labelSet.Len()).
		Msg("Template constructed")

	return t, nil
}

// rehydrate derives state that is never persisted
func (t *Template) rehydrate() {
	t.labelSet = ParseLabels(t.cfg.LabelString)
}

// Config returns the raw fields the template was built from, with remoteFs
// and instanceCap in their normalized form. Passing it to New yields an
// equal template.
func (t *Template) Config() types.TemplateConfig {
	cfg := t.cfg
	cfg.RemoteFs = t.remoteFs
	cfg.InstanceCapStr = t.instanceCap.String()
	cfg.DNSString = t.DNSString()
	cfg.VolumesString = t.VolumesString()
	return cfg
}

func (t *Template) Image() string                  { return t.cfg.Image }
func (t *Template) LabelString() string            { return t.cfg.LabelString }
func (t *Template) CredentialsID() string          { return t.cfg.CredentialsID }
func (t *Template) DockerCommand() string          { return t.cfg.DockerCommand }
func (t *Template) LXCConfString() string          { return t.cfg.LXCConfString }
func (t *Template) IdleTerminationMinutes() string { return t.cfg.IdleTerminationMinutes }
func (t *Template) JVMOptions() string             { return t.cfg.JVMOptions }
func (t *Template) JavaPath() string               { return t.cfg.JavaPath }
func (t *Template) PrefixStartCmd() string         { return t.cfg.PrefixStartCmd }
func (t *Template) SuffixStartCmd() string         { return t.cfg.SuffixStartCmd }
func (t *Template) RemoteFsMapping() string        { return t.cfg.RemoteFsMapping }
func (t *Template) Hostname() string               { return t.cfg.Hostname }
func (t *Template) VolumesFrom() string            { return t.cfg.VolumesFrom }
func (t *Template) Privileged() bool               { return t.cfg.Privileged }

// RemoteFs returns the agent root directory, DefaultRemoteFs if none was set
func (t *Template) RemoteFs() string {
	return t.remoteFs
}

// InstanceCap returns the maximum number of concurrent agents
func (t *Template) InstanceCap() Capacity {
	return t.instanceCap
}

// InstanceCapString returns "" when unbounded
func (t *Template) InstanceCapString() string {
	return t.instanceCap.String()
}

// IdleTermination parses idleTerminationMinutes. The value is not checked by
// New, so callers get the parse error here, at use time.
func (t *Template) IdleTermination() (time.Duration, error) {
	minutes, err := strconv.Atoi(strings.TrimSpace(t.cfg.IdleTerminationMinutes))
	if err != nil {
		return 0, fmt.Errorf("invalid idle termination minutes %q: %w", t.cfg.IdleTerminationMinutes, err)
	}
	return time.Duration(minutes) * time.Minute, nil
}

// DNSHosts returns a copy of the DNS servers, in configured order
func (t *Template) DNSHosts() []string {
	return append([]string(nil), t.dnsHosts...)
}

// DNSString joins DNSHosts with single spaces
func (t *Template) DNSString() string {
	return JoinList(t.dnsHosts)
}

// Volumes returns a copy of the volume specs, in configured order
func (t *Template) Volumes() []string {
	return append([]string(nil), t.volumes...)
}

// VolumesString joins Volumes with single spaces
func (t *Template) VolumesString() string {
	return JoinList(t.volumes)
}

// LabelSet returns the labels parsed from LabelString. Never nil.
func (t *Template) LabelSet() LabelSet {
	out := make(LabelSet, len(t.labelSet))
	for label := range t.labelSet {
		out[label] = struct{}{}
	}
	return out
}

// DisplayName is what listings show for the template
func (t *Template) DisplayName() string {
	return "Image of " + t.cfg.Image
}

func (t *Template) String() string {
	return fmt.Sprintf("Template{image=%s}", t.cfg.Image)
}

// MarshalJSON stores the raw configuration only; the label set is derived.
func (t *Template) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Config())
}

// UnmarshalJSON rebuilds the template through New so that derived state is
// recomputed from what was loaded.
func (t *Template) UnmarshalJSON(data []byte) error {
	var cfg types.TemplateConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	loaded, err := New(cfg)
	if err != nil {
		return err
	}
	*t = *loaded
	return nil
}
