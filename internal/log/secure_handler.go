package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nao1215/sosanalyzer/internal/config"
)

// sensitiveKeys contains attribute keys that should always be sanitized.
var sensitiveKeys = map[string]bool{
	// Object store and API credentials from the configuration object
	"access_key":    true,
	"accesskey":     true,
	"secret_key":    true,
	"secretkey":     true,
	"session_token": true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"authorization": true,

	// Authentication
	"password":   true,
	"passwd":     true,
	"secret":     true,
	"token":      true,
	"credential": true,

	// Key material found in bundles
	"private_key": true,
	"privatekey":  true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be sanitized regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// AWS access keys
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// password=..., passwd: ... assignments in configuration files and logs
	regexp.MustCompile(`(?i)(password|passwd|pwd|secret)\s*[:=]\s*\S+`),
}

// inlineSecret matches a secret embedded in longer text, such as an error
// message that quotes a configuration line or an endpoint URL.
type inlineSecret struct {
	pattern *regexp.Regexp
	repl    string
}

var inlineSecrets = []inlineSecret{
	// key=value and key: value assignments
	{
		pattern: regexp.MustCompile(`(?i)((?:password|passwd|pwd|secret|secret_key|access_key|token)\s*[:=]\s*)[^\s,;"']+`),
		repl:    "${1}" + MaskValue,
	},
	// user:password@ in URLs
	{
		pattern: regexp.MustCompile(`(://[^/\s:@]+:)[^/\s@]+@`),
		repl:    "${1}" + MaskValue + "@",
	},
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// SecureHandler wraps an slog.Handler to sanitize sensitive information.
// It intercepts log records and sanitizes attribute values that match
// sensitive key names or value patterns before passing them to the
// underlying handler.
type SecureHandler struct {
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// If handler is nil, the returned SecureHandler will use slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it to the underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	keyLower := strings.ToLower(a.Key)
	if sensitiveKeys[keyLower] || containsSensitiveKeyword(keyLower) {
		return slog.String(a.Key, MaskValue)
	}

	switch a.Value.Kind() {
	case slog.KindString:
		if isSensitiveValue(a.Value.String()) {
			return slog.String(a.Key, MaskValue)
		}
	case slog.KindAny:
		if err, ok := a.Value.Any().(error); ok && err != nil {
			return slog.String(a.Key, redactInline(err.Error()))
		}
	}

	return a
}

// redactInline masks secrets inside s and keeps the surrounding text.
func redactInline(s string) string {
	for _, is := range inlineSecrets {
		s = is.pattern.ReplaceAllString(s, is.repl)
	}
	return s
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare "key" keyword is excluded: it would mask harmless attributes
// such as "object_key".
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// NewLogger creates a text logger writing to w at the level implied by
// verbosity. The logger sanitizes sensitive information in all output.
func NewLogger(w io.Writer, verbosity config.Verbosity) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: verbosity.Level(),
	}

	return slog.New(NewSecureHandler(slog.NewTextHandler(w, opts)))
}

// NewJSONLogger creates a JSON logger writing to w at the level implied by
// verbosity. Useful when the output is collected by a log aggregator.
func NewJSONLogger(w io.Writer, verbosity config.Verbosity) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: verbosity.Level(),
	}

	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, opts)))
}
