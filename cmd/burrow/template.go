package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cuemby/burrow/pkg/credentials"
	"github.com/cuemby/burrow/pkg/metrics"
	"github.com/cuemby/burrow/pkg/provision"
	"github.com/cuemby/burrow/pkg/template"
	"github.com/cuemby/burrow/pkg/types"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage agent templates",
}

var templateApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Validate and store templates from a YAML file",
	Long: `Apply agent templates from a YAML file. A file may hold several
documents separated by "---"; every document must parse before any
template is stored.

Example:
  apiVersion: burrow/v1
  kind: AgentTemplate
  metadata:
    name: ubuntu
  spec:
    image: ubuntu:20.04
    labels: docker linux
    credentialsId: agent-key
    instanceCap: "5"
    dns: 8.8.8.8 8.8.4.4`,
	RunE: runTemplateApply,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		templates, err := store.ListTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY NAME\tLABELS\tCAP")
		for _, named := range templates {
			capStr := named.Template.InstanceCapString()
			if capStr == "" {
				capStr = "unbounded"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", named.Name, named.Template.DisplayName(), named.Template.LabelSet(), capStr)
		}
		return w.Flush()
	},
}

var templateShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Show the normalized form of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		tmpl, err := store.GetTemplate(args[0])
		if err != nil {
			return err
		}
		return printTemplate(cmd.OutOrStdout(), args[0], tmpl)
	},
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteTemplate(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Template deleted: %s\n", args[0])
		return nil
	},
}

var templateCredentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "List credentials a template may use from a scope",
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, _ := cmd.Flags().GetString("scope")

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		d := template.NewDescriptor(credentials.NewStoreLister(store), credentials.SSHMatcher)
		items, err := d.FillCredentialsIDItems(cmd.Context(), scope)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL")
		for _, item := range items {
			fmt.Fprintf(w, "%s\t%s\n", item.ID, item.Label)
		}
		return w.Flush()
	},
}

var templatePlanCmd = &cobra.Command{
	Use:   "plan NAME",
	Short: "Print the launch request for one more agent of a template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		running, _ := cmd.Flags().GetInt("running")

		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		tmpl, err := store.GetTemplate(args[0])
		if err != nil {
			return err
		}

		p := provision.NewProvisioner(credentials.NewStoreResolver(store))
		req, err := p.Plan(cmd.Context(), args[0], tmpl, running)
		if err != nil {
			return err
		}

		return writeYAML(cmd.OutOrStdout(), req)
	},
}

func init() {
	templateApplyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = templateApplyCmd.MarkFlagRequired("file")
	templateCredentialsCmd.Flags().String("scope", types.GlobalScope, "Scope to list credentials from")
	templatePlanCmd.Flags().Int("running", 0, "Number of agents of this template already running")

	templateCmd.AddCommand(templateApplyCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateShowCmd)
	templateCmd.AddCommand(templateDeleteCmd)
	templateCmd.AddCommand(templateCredentialsCmd)
	templateCmd.AddCommand(templatePlanCmd)
}

func runTemplateApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	named, err := decodeTemplates(data)
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, n := range named {
		if err := store.UpdateTemplate(n.name, n.tmpl); err != nil {
			return fmt.Errorf("failed to store template %s: %w", n.name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Template applied: %s (%s)\n", n.name, n.tmpl.DisplayName())
	}
	return nil
}

type namedTemplate struct {
	name string
	tmpl *template.Template
}

// decodeTemplates parses every YAML document in data into a template.
// It fails on the first invalid document.
func decodeTemplates(data []byte) ([]namedTemplate, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var out []namedTemplate
	for i := 0; ; i++ {
		var doc types.TemplateDocument
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %d: %w", i, err)
		}

		if doc.Kind != types.TemplateKind {
			return nil, fmt.Errorf("document %d: unsupported kind %q", i, doc.Kind)
		}
		if doc.Metadata.Name == "" {
			return nil, fmt.Errorf("document %d: metadata.name is required", i)
		}

		tmpl, err := template.New(doc.Spec)
		if err != nil {
			var cfgErr *template.ConfigurationError
			if errors.As(err, &cfgErr) {
				metrics.TemplateErrorsTotal.WithLabelValues(string(cfgErr.Kind)).Inc()
			}
			return nil, fmt.Errorf("template %s: %w", doc.Metadata.Name, err)
		}
		out = append(out, namedTemplate{name: doc.Metadata.Name, tmpl: tmpl})
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no templates found")
	}
	return out, nil
}

// templateView is the printable form of a template
type templateView struct {
	Name            string   `yaml:"name"`
	DisplayName     string   `yaml:"displayName"`
	Image           string   `yaml:"image"`
	Labels          []string `yaml:"labels"`
	CredentialsID   string   `yaml:"credentialsId"`
	InstanceCap     string   `yaml:"instanceCap"`
	RemoteFs        string   `yaml:"remoteFs"`
	RemoteFsMapping string   `yaml:"remoteFsMapping,omitempty"`
	Hostname        string   `yaml:"hostname,omitempty"`
	DNS             string   `yaml:"dns"`
	Volumes         string   `yaml:"volumes"`
	VolumesFrom     string   `yaml:"volumesFrom,omitempty"`
	DockerCommand   string   `yaml:"dockerCommand,omitempty"`
	LXCConf         string   `yaml:"lxcConf,omitempty"`
	IdleMinutes     string   `yaml:"idleTerminationMinutes,omitempty"`
	JVMOptions      string   `yaml:"jvmOptions,omitempty"`
	JavaPath        string   `yaml:"javaPath,omitempty"`
	PrefixStartCmd  string   `yaml:"prefixStartCmd,omitempty"`
	SuffixStartCmd  string   `yaml:"suffixStartCmd,omitempty"`
	Privileged      bool     `yaml:"privileged"`
}

func printTemplate(w io.Writer, name string, tmpl *template.Template) error {
	capStr := tmpl.InstanceCapString()
	if capStr == "" {
		capStr = "unbounded"
	}

	view := templateView{
		Name:            name,
		DisplayName:     tmpl.DisplayName(),
		Image:           tmpl.Image(),
		Labels:          tmpl.LabelSet().Sorted(),
		CredentialsID:   tmpl.CredentialsID(),
		InstanceCap:     capStr,
		RemoteFs:        tmpl.RemoteFs(),
		RemoteFsMapping: tmpl.RemoteFsMapping(),
		Hostname:        tmpl.Hostname(),
		DNS:             tmpl.DNSString(),
		Volumes:         tmpl.VolumesString(),
		VolumesFrom:     tmpl.VolumesFrom(),
		DockerCommand:   tmpl.DockerCommand(),
		LXCConf:         tmpl.LXCConfString(),
		IdleMinutes:     tmpl.IdleTerminationMinutes(),
		JVMOptions:      tmpl.JVMOptions(),
		JavaPath:        tmpl.JavaPath(),
		PrefixStartCmd:  tmpl.PrefixStartCmd(),
		SuffixStartCmd:  tmpl.SuffixStartCmd(),
		Privileged:      tmpl.Privileged(),
	}

	return writeYAML(w, view)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
