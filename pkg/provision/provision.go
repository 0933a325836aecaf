package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
)

const (
	// DefaultJavaPath is used when a template does not set javaPath
	DefaultJavaPath = "java"

	// AgentJar is the agent entry point inside remoteFs
	AgentJar = "slave.jar"
)

var (
	// ErrCapacityReached is returned when a template's instance cap is used up
	ErrCapacityReached = errors.New("instance cap reached")

	// ErrCredentialUnavailable wraps any failure to resolve a template's credential
	ErrCredentialUnavailable = errors.New("credential unavailable")
)

// CredentialResolver turns a credential identifier into usable material.
// It is only consulted when an agent is about to launch.
type CredentialResolver interface {
	Resolve(ctx context.Context, id string) (*types.Credential, error)
}

// LaunchRequest is everything a container runtime needs to start one agent
type LaunchRequest struct {
	Template      string            `yaml:"template"`
	Image         string            `yaml:"image"`
	Hostname      string            `yaml:"hostname"`
	Command       []string          `yaml:"command,omitempty"`
	Privileged    bool              `yaml:"privileged"`
	DNS           []string          `yaml:"dns,omitempty"`
	ResolvConf    string            `yaml:"resolvConf,omitempty"`
	Mounts        []specs.Mount     `yaml:"mounts,omitempty"`
	VolumesFrom   []string          `yaml:"volumesFrom,omitempty"`
	LXCConf       string            `yaml:"lxcConf,omitempty"`
	Labels        []string          `yaml:"labels,omitempty"`
	RemoteFs      string            `yaml:"remoteFs"`
	AgentCommand  string            `yaml:"agentCommand"`
	IdleTimeout   time.Duration     `yaml:"idleTimeout,omitempty"`
	CredentialsID string            `yaml:"credentialsId"`
	Username      string            `yaml:"username"`
	Credential    *types.Credential `yaml:"-"`
}

// Provisioner plans agent launches from templates
type Provisioner struct {
	resolver CredentialResolver
}

// NewProvisioner creates a provisioner that resolves credentials through resolver
func NewProvisioner(resolver CredentialResolver) *Provisioner {
	return &Provisioner{resolver: resolver}
}

// Plan builds the launch request for one more agent of tmpl when running
// agents of it are already active. Failures the template could not catch at
// construction (missing credential, unparseable command or idle timeout,
// malformed volume spec) surface here.
func (p *Provisioner) Plan(ctx context.Context, name string, tmpl *template.Template, running int) (*LaunchRequest, error) {
	logger := log.WithTemplate(name)

	req, err := p.plan(ctx, name, tmpl, running)
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrCapacityReached) {
			outcome = "capacity"
		}
		metrics.LaunchPlansTotal.WithLabelValues(outcome).Inc()
		logger.Warn().Err(err).Int("running", running).Msg("Launch plan rejected")
		return nil, err
	}

	metrics.LaunchPlansTotal.WithLabelValues("planned").Inc()
	logger.Info().
		Str("image", req.Image).
		Str("hostname", req.Hostname).
		Int("mounts", len(req.Mounts)).
		Msg("Launch planned")
	return req, nil
}

func (p *Provisioner) plan(ctx context.Context, name string, tmpl *template.Template, running int) (*LaunchRequest, error) {
	if !tmpl.InstanceCap().Allows(running) {
		return nil, fmt.Errorf("template %s has %d of %s agents: %w", name, running, tmpl.InstanceCapString(), ErrCapacityReached)
	}

	cred, err := p.resolver.Resolve(ctx, tmpl.CredentialsID())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialUnavailable, err)
	}

	command, err := splitCommand(tmpl.DockerCommand())
	if err != nil {
		return nil, fmt.Errorf("invalid docker command: %w", err)
	}

	mounts, err := buildMounts(tmpl)
	if err != nil {
		return nil, err
	}

	var idle time.Duration
	if strings.TrimSpace(tmpl.IdleTerminationMinutes()) != "" {
		idle, err = tmpl.IdleTermination()
		if err != nil {
			return nil, err
		}
	}

	hostname := tmpl.Hostname()
	if hostname == "" {
		hostname = "agent-" + uuid.New().String()[:8]
	}

	return &LaunchRequest{
		Template:      name,
		Image:         tmpl.Image(),
		Hostname:      hostname,
		Command:       command,
		Privileged:    tmpl.Privileged(),
		DNS:           tmpl.DNSHosts(),
		ResolvConf:    ResolvConf(tmpl.DNSHosts()),
		Mounts:        mounts,
		VolumesFrom:   ParseVolumesFrom(tmpl.VolumesFrom()),
		LXCConf:       tmpl.LXCConfString(),
		Labels:        tmpl.LabelSet().Sorted(),
		RemoteFs:      tmpl.RemoteFs(),
		AgentCommand:  AgentCommand(tmpl),
		IdleTimeout:   idle,
		CredentialsID: cred.ID,
		Username:      cred.Username,
		Credential:    cred,
	}, nil
}

// AgentCommand assembles the command run over SSH to start the agent:
// prefix, java with its options, the agent jar in remoteFs, then suffix.
func AgentCommand(tmpl *template.Template) string {
	javaPath := tmpl.JavaPath()
	if javaPath == "" {
		javaPath = DefaultJavaPath
	}

	parts := []string{tmpl.PrefixStartCmd(), javaPath, tmpl.JVMOptions(), "-jar", tmpl.RemoteFs() + "/" + AgentJar, tmpl.SuffixStartCmd()}
	nonEmpty := parts[:0]
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, " ")
}

func splitCommand(cmd string) ([]string, error) {
	if strings.TrimSpace(cmd) == "" {
		return nil, nil
	}
	return shellquote.Split(cmd)
}

// ParseVolumesFrom splits a volumes-from reference on commas and spaces
func ParseVolumesFrom(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}
