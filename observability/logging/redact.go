package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue replaces the value of sensitive attributes.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"authorization": {},
	"headers":       {},
	"otlp_headers":  {},
	"passphrase":    {},
	"private_key":   {},
	"secret":        {},
	"token":         {},
}

// IsSensitive reports whether attributes under key are masked in log output.
func IsSensitive(key string) bool {
	_, ok := sensitiveKeys[strings.ToLower(strings.TrimSpace(key))]
	return ok
}

// MaskValue returns RedactedValue for non-empty values. Empty values pass
// through so missing settings stay visible.
func MaskValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return value
	}
	return RedactedValue
}

// redactAttr masks sensitive attributes at any group depth.
func redactAttr(attr slog.Attr) slog.Attr {
	if !IsSensitive(attr.Key) {
		return attr
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindString {
		return slog.String(attr.Key, MaskValue(value.String()))
	}
	return slog.String(attr.Key, RedactedValue)
}
