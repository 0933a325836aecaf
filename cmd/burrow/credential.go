package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/burrow/pkg/credentials"
	"github.com/cuemby/burrow/pkg/types"
)

var credentialCmd = &cobra.Command{
	Use:   "credential",
	Short: "Manage credentials referenced by templates",
}

var credentialAddCmd = &cobra.Command{
	Use:   "add ID",
	Short: "Add or replace a credential",
	Long: `Add a credential to the local store.

Examples:
  # SSH private key, visible everywhere
  burrow credential add agent-key --kind ssh-private-key --username jenkins --key-file ~/.ssh/id_ed25519

  # Username and password read from stdin, visible under the "team" scope only
  printf '%s' "$PASSWORD" | burrow credential add team-pass --kind username-password --username build --password-file - --scope team`,
	Args: cobra.ExactArgs(1),
	RunE: runCredentialAdd,
}

var credentialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		creds, err := store.ListCredentials()
		if err != nil {
			return fmt.Errorf("failed to list credentials: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tKIND\tSCOPE\tUSERNAME\tSSH")
		for _, cred := range creds {
			ssh := "no"
			if credentials.SSHMatcher(cred) {
				ssh = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", cred.ID, cred.Kind, cred.Scope, cred.Username, ssh)
		}
		return w.Flush()
	},
}

var credentialDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a credential",
	Long: `Delete a credential. Templates that reference it are left unchanged
and fail when an agent is next planned from them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteCredential(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Credential deleted: %s\n", args[0])
		return nil
	},
}

func init() {
	credentialAddCmd.Flags().String("kind", string(types.CredentialSSHPrivateKey), "Credential kind (ssh-private-key, username-password, secret-text)")
	credentialAddCmd.Flags().String("username", "", "Username")
	credentialAddCmd.Flags().String("key-file", "", "Private key file (ssh-private-key)")
	credentialAddCmd.Flags().String("passphrase-file", "", "File holding the private key passphrase, - for stdin")
	credentialAddCmd.Flags().String("password-file", "", "File holding the password (username-password), - for stdin")
	credentialAddCmd.Flags().String("scope", types.GlobalScope, "Scope the credential is visible from")
	credentialAddCmd.Flags().String("description", "", "Description")

	credentialCmd.AddCommand(credentialAddCmd)
	credentialCmd.AddCommand(credentialListCmd)
	credentialCmd.AddCommand(credentialDeleteCmd)
}

func runCredentialAdd(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	username, _ := cmd.Flags().GetString("username")
	keyFile, _ := cmd.Flags().GetString("key-file")
	passphraseFile, _ := cmd.Flags().GetString("passphrase-file")
	passwordFile, _ := cmd.Flags().GetString("password-file")
	scope, _ := cmd.Flags().GetString("scope")
	description, _ := cmd.Flags().GetString("description")

	if passphraseFile == "-" && passwordFile == "-" {
		return fmt.Errorf("only one of --passphrase-file and --password-file can read stdin")
	}
	passphrase, err := readSecret(cmd, passphraseFile)
	if err != nil {
		return fmt.Errorf("failed to read passphrase: %w", err)
	}
	password, err := readSecret(cmd, passwordFile)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	cred := &types.Credential{
		ID:          args[0],
		Kind:        types.CredentialKind(kind),
		Scope:       scope,
		Description: description,
		Username:    username,
		Passphrase:  passphrase,
		Password:    password,
		CreatedAt:   time.Now(),
	}

	switch cred.Kind {
	case types.CredentialSSHPrivateKey:
		if keyFile == "" {
			return fmt.Errorf("--key-file is required for %s", cred.Kind)
		}
		key, err := os.ReadFile(keyFile)
		if err != nil {
			return fmt.Errorf("failed to read key file: %w", err)
		}
		cred.PrivateKey = key
		if _, err := credentials.Signer(cred); err != nil {
			return fmt.Errorf("failed to parse private key: %w", err)
		}
	case types.CredentialUsernamePassword, types.CredentialSecretText:
	default:
		return fmt.Errorf("unsupported credential kind: %s", kind)
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.CreateCredential(cred); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Credential stored: %s\n", cred.ID)
	return nil
}

// readSecret loads a secret from path, or from stdin when path is "-", so it
// never appears on the command line. One trailing newline is dropped.
func readSecret(cmd *cobra.Command, path string) (string, error) {
	var data []byte
	var err error
	switch path {
	case "":
		return "", nil
	case "-":
		data, err = io.ReadAll(cmd.InOrStdin())
	default:
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	secret := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(secret, "\r"), nil
}
