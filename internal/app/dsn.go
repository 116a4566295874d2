package app

import (
	"net/url"
	"regexp"
	"strings"
)

// lib/pq's binary result format breaks behind pgbouncer in transaction
// pooling mode, so the flag is appended unless the operator already set it.
func normalizeDBURL(raw string, disableBinary bool) string {
	if !disableBinary {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil {
		return raw
	}
	params := parsed.Query()
	if params.Has("disable_prepared_binary_result") {
		return raw
	}

	params.Set("disable_prepared_binary_result", "yes")
	parsed.RawQuery = params.Encode()
	return parsed.String()
}

// dbNameFromURL extracts the database name for span attribution. Both URL
// connection strings and key=value DSNs show up in deployments.
func dbNameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)

	if parsed, err := url.Parse(raw); err == nil && parsed != nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}

	for _, field := range strings.Fields(raw) {
		if value, ok := strings.CutPrefix(field, "dbname="); ok {
			if name := strings.Trim(value, `"' `); name != "" {
				return name
			}
		}
	}

	return ""
}

const maxTracedQueryLen = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses whitespace and caps the statement text so
// SQL span attributes stay readable in the trace UI.
func formatDBQueryForTrace(query string) string {
	out := sqlWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(out) > maxTracedQueryLen {
		out = out[:maxTracedQueryLen] + "..."
	}
	return out
}
