/*
Package template holds the agent template model: the immutable provisioning
parameters for one class of container-backed build agent.

New takes the raw operator fields (types.TemplateConfig) and normalizes
them once:

  - labels are split on whitespace into a LabelSet (duplicates collapse)
  - dns and volumes are split on single spaces, empty tokens dropped
  - a blank remoteFs becomes DefaultRemoteFs
  - an empty instanceCap is Unbounded; anything else must be an integer

Construction fails only for a malformed instanceCap, with a
*ConfigurationError of KindNumberFormat. Everything else, including the
credential identifier and the image reference, is accepted verbatim and
checked later by whoever acts on it.

The label set is never persisted. JSON encoding writes the raw
configuration and decoding goes back through New.

Descriptor serves configuration front ends: it enumerates credentials
compatible with SSH agent launch through an injected CredentialLister.
*/
package template
