package config

import "strings"

const (
	// DefaultDatabasePath is the default path for the catalog database
	DefaultDatabasePath = "./library-catalog.db"

	// DefaultPort matches the port the desktop client historically expected
	DefaultPort = 8080

	// DefaultClientBaseURL is where the shell looks for the catalog API
	DefaultClientBaseURL = "http://localhost:8080"
)

// splitList turns a comma-separated setting into trimmed, non-empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
