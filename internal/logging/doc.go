// Package logging provides a simple leveled logging interface for the
// stream bridge.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information, including decoder stderr
//   - INFO: General operational messages
//   - WARN: Warning conditions (degraded sessions, slow consumers)
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is configured via the LOG_LEVEL environment variable,
// with DEBUG=1 as a shortcut for LOG_LEVEL=debug.
package logging
