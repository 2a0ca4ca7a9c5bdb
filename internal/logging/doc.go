// Package logging provides structured logging built on log/slog.
//
// Every record carries service and version attributes. Components derive
// child loggers with With:
//
//	log := logging.New(cfg.Logging, version)
//	log.With("component", "assets").Info("asset saved", "name", name)
package logging
