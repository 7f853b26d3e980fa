package meta

import (
	"os"
	"strings"
	"unicode"
)

// expandEnvExpr replaces every ${env.KEY} occurrence with the value of the
// environment variable KEY, or "" when unset. Malformed expressions stay
// literal; nested openers inside them are still expanded.
func expandEnvExpr(value string) string {
	const open = "${env."
	var b strings.Builder
	for {
		idx := strings.Index(value, open)
		if idx < 0 {
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:idx])
		rest := value[idx+len(open):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(value[idx:])
			return b.String()
		}
		key := rest[:end]
		if !isEnvKey(key) {
			// keep the opener literal, rescan just past it
			b.WriteString(open)
			value = rest
			continue
		}
		b.WriteString(os.Getenv(key))
		value = rest[end+1:]
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}
	return true
}
