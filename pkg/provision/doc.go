/*
Package provision turns agent templates into launch requests.

The template package accepts image references, commands and credential
identifiers without checking them. Provisioner.Plan is where those values
are first acted on, so this is where they fail:

  - the instance cap is enforced against the number of running agents
  - the credential identifier is resolved through a CredentialResolver
  - the docker command is split with shell quoting rules
  - volume specs become OCI runtime mounts
  - idle termination minutes are parsed

A LaunchRequest is a plan only. Starting containers and opening SSH
sessions belong to the runtime that consumes it.
*/
package provision
