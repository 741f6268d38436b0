package audit

import "regexp"

var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`sk-[A-Za-z0-9]{20,}`),
	regexp.MustCompile(`-----BEGIN [A-Z ]+PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
}

// Redact masks credential-shaped substrings before anything is persisted.
func Redact(text string) string {
	out := text
	for _, p := range secretPatterns {
		out = p.ReplaceAllString(out, "[REDACTED]")
	}
	return out
}
