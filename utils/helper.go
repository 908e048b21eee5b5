package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateShareToken returns an opaque token for public configuration links.
// Tokens are random, not signed; possession of the token grants read access.
func GenerateShareToken() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}

func SplitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
