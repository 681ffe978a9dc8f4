package logging

import (
	"regexp"
)

const (
	// RedactedText replaces sensitive values in log output.
	RedactedText = "[REDACTED]"
	// MaxBodyLogLength bounds how much of a remote response body is logged.
	MaxBodyLogLength = 200
)

var (
	// password=xxx, pwd=xxx, pass=xxx up to the next delimiter
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// X-RapidAPI-Key style headers echoed back in transport errors
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(x-rapidapi-key:?\s*)[A-Za-z0-9-_]+`)

	// api_key=..., apikey=..., key=... query parameters
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9-_]{8,}`)

	// user:pass@host in connection URLs
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// SanitizeConnectionString removes credentials from a Postgres or Redis connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError returns the error text with credentials and API keys removed.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = apiKeyHeaderPattern.ReplaceAllString(sanitized, "${1}"+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// RedactSecret keeps the last four characters of a secret so operators can
// tell keys apart without exposing them.
func RedactSecret(secret string) string {
	if len(secret) <= 4 {
		if secret == "" {
			return ""
		}
		return RedactedText
	}
	return RedactedText + secret[len(secret)-4:]
}

// TruncateString truncates a string to maxLen and adds ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
