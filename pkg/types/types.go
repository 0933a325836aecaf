package types

import (
	"time"
)

// TemplateConfig holds the raw, operator-supplied fields of an agent template.
// Every value is kept as the operator typed it; normalization happens in
// package template.
type TemplateConfig struct {
	Image                  string `yaml:"image" json:"image"`
	LabelString            string `yaml:"labels,omitempty" json:"labels,omitempty"`
	CredentialsID          string `yaml:"credentialsId,omitempty" json:"credentialsId,omitempty"`
	DockerCommand          string `yaml:"dockerCommand,omitempty" json:"dockerCommand,omitempty"`
	LXCConfString          string `yaml:"lxcConf,omitempty" json:"lxcConf,omitempty"`
	IdleTerminationMinutes string `yaml:"idleTerminationMinutes,omitempty" json:"idleTerminationMinutes,omitempty"`
	JVMOptions             string `yaml:"jvmOptions,omitempty" json:"jvmOptions,omitempty"`
	JavaPath               string `yaml:"javaPath,omitempty" json:"javaPath,omitempty"`
	PrefixStartCmd         string `yaml:"prefixStartCmd,omitempty" json:"prefixStartCmd,omitempty"`
	SuffixStartCmd         string `yaml:"suffixStartCmd,omitempty" json:"suffixStartCmd,omitempty"`
	RemoteFs               string `yaml:"remoteFs,omitempty" json:"remoteFs,omitempty"`
	RemoteFsMapping        string `yaml:"remoteFsMapping,omitempty" json:"remoteFsMapping,omitempty"`
	Hostname               string `yaml:"hostname,omitempty" json:"hostname,omitempty"`
	InstanceCapStr         string `yaml:"instanceCap,omitempty" json:"instanceCap,omitempty"`
	DNSString              string `yaml:"dns,omitempty" json:"dns,omitempty"`
	VolumesString          string `yaml:"volumes,omitempty" json:"volumes,omitempty"`
	VolumesFrom            string `yaml:"volumesFrom,omitempty" json:"volumesFrom,omitempty"`
	Privileged             bool   `yaml:"privileged,omitempty" json:"privileged,omitempty"`
}

// TemplateDocument is the on-disk form of a template
type TemplateDocument struct {
	APIVersion string           `yaml:"apiVersion"`
	Kind       string           `yaml:"kind"`
	Metadata   DocumentMetadata `yaml:"metadata"`
	Spec       TemplateConfig   `yaml:"spec"`
}

// DocumentMetadata names a template document
type DocumentMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// TemplateKind is the only document kind accepted by apply
const TemplateKind = "AgentTemplate"

// CredentialKind defines what kind of secret material a credential carries
type CredentialKind string

const (
	CredentialSSHPrivateKey    CredentialKind = "ssh-private-key"
	CredentialUsernamePassword CredentialKind = "username-password"
	CredentialSecretText       CredentialKind = "secret-text"
)

// GlobalScope is visible from every scope
const GlobalScope = "global"

// Credential represents authentication material held by the credential store
type Credential struct {
	ID          string
	Kind        CredentialKind
	Scope       string // "global" or a slash separated folder path
	Description string
	Username    string
	PrivateKey  []byte // PEM, for ssh-private-key
	Passphrase  string // Optional, for encrypted private keys
	Password    string // For username-password
	CreatedAt   time.Time
}
