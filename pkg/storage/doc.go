/*
Package storage provides BoltDB-backed persistence for agent templates and
the credentials they reference.

Each kind lives in its own bucket (templates keyed by name, credentials by
ID) and values are JSON. Templates are written through their raw
configuration only; loading goes back through template.New, so the derived
label set is always recomputed from the stored label string and never read
from disk.

Missing keys return an error wrapping ErrNotFound:

	tmpl, err := store.GetTemplate("ubuntu")
	if errors.Is(err, storage.ErrNotFound) {
		...
	}
*/
package storage
