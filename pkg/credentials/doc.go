// Package credentials connects agent templates to the credential store.
//
// StoreLister backs the template descriptor's credential drop-down and
// SSHMatcher decides which stored credentials an SSH agent launch can use.
// StoreResolver is the launch-time side: it turns a template's credential
// identifier into material, failing with ErrCredentialNotFound when the
// identifier points at a credential that has since been removed.
package credentials
