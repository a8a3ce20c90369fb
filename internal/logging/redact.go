package logging

import "regexp"

// RedactedValue replaces secrets found in logged strings.
const RedactedValue = "[REDACTED]"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._~+/=-]{8,}`),
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]*`),
	regexp.MustCompile(`(?i)"(token|access_token|password)"\s*:\s*"[^"]*"`),
}

// Redact strips bearer tokens and JWTs from s, typically a server error body.
func Redact(s string) string {
	for _, pattern := range secretPatterns {
		s = pattern.ReplaceAllString(s, RedactedValue)
	}
	return s
}
