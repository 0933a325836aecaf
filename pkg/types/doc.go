/*
Package types defines the plain data structures shared across burrow.

TemplateConfig is the raw, unvalidated form of an agent template exactly as
an operator writes it in YAML; package template normalizes it.
TemplateDocument wraps it for files applied with "burrow template apply".

Credential is what the credential store holds. Templates only ever refer to
a credential by ID.
*/
package types
