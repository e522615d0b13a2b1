// Package log builds the structured loggers used by sosanalyzer.
//
// Loggers are plain *slog.Logger values whose handler is wrapped in a
// SecureHandler. The wrapper masks attributes that may carry secrets:
//   - credential keys from the configuration object (access_key, secret_key, password, token)
//   - values that look like tokens, private keys or "password=..." lines
//   - credentials quoted inside error values, such as URL user info
//
// Support bundles routinely contain configuration files and logs with
// credentials in them, and analyzer matches are logged at debug level, so
// sanitization applies at every verbosity.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, config.VerbosityNormal)
//	logger.Info("extracting archive", "archive", path)
//
// Loggers are passed explicitly to every component.
package log
