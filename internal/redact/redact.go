// Package redact removes personal and operational data from strings before
// they are logged or returned in error responses. Person records carry phone
// numbers, addresses and photos; storage errors can echo SQL, connection
// strings and file paths. None of those belong in a log line.
package redact

import (
	"log/slog"
	"regexp"
)

// Placeholders substituted for redacted fragments.
const (
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
	RedactedPhonePlaceholder      = "[REDACTED_PHONE]"
	RedactedSQLPlaceholder        = "[REDACTED_SQL]"
	RedactedDataURIPlaceholder    = "[REDACTED_DATA_URI]"
	RedactedStackTracePlaceholder = "[STACK_TRACE_REDACTED]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules run in order; earlier rules may consume text later rules would match.
var rules = []rule{
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		RedactedStackTracePlaceholder,
	},
	{
		regexp.MustCompile(`data:[\w/+.-]+;base64,[A-Za-z0-9+/=]+`),
		RedactedDataURIPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|redis|rediss)://[^@\s]+@`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*['"]?[^'"&\s]+['"]?`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)\b(SELECT\b[^;]*?\bFROM|INSERT\s+INTO|UPDATE\s+\w+\s+SET|DELETE\s+FROM)\b[^;]*`),
		RedactedSQLPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(`(?:\+\d{1,3}[\s-]?)?\(?\d{3}\)?[\s.-]?\d{3,4}[\s.-]?\d{3,4}`),
		RedactedPhonePlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}
	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}

// ErrorAttr returns an "error" log attribute carrying the redacted error text.
func ErrorAttr(err error) slog.Attr {
	return slog.String("error", Error(err))
}
