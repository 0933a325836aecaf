/*
Package log provides structured logging for burrow using zerolog.

A single package-level Logger is configured once by Init, usually from the
CLI's persistent flags. Until Init runs the logger discards everything, so
library packages can log unconditionally and tests stay quiet.

# Usage

	log.Init(log.Config{
		Level:      log.ParseLevel("debug"),
		JSONOutput: false,
		Output:     os.Stderr,
	})

	logger := log.WithComponent("storage")
	logger.Info().Str("template", "ubuntu").Msg("Template stored")

Context loggers:

  - WithComponent: component name (template, storage, provision, ...)
  - WithTemplate: template name
  - WithCredentialID: credential identifier, never the secret itself

Never log credential material. Use the identifier.
*/
package log
