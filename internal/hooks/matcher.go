package hooks

import (
	"regexp"
	"strings"
	"sync"
)

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// MatchesTool reports whether a hook matcher pattern applies to a tool name.
// Supported forms: "*" (matches everything), glob patterns where '*' matches
// any run of characters and '?' matches exactly one, and plain strings
// compared for equality. All matching is case-insensitive.
func MatchesTool(pattern, toolName string) bool {
	if pattern == "*" {
		return true
	}
	if strings.ContainsAny(pattern, "*?") {
		re := compilePattern(pattern)
		if re == nil {
			return false
		}
		return re.MatchString(toolName)
	}
	return strings.EqualFold(pattern, toolName)
}

// compilePattern translates a glob pattern into an anchored case-insensitive
// regexp. Compiled patterns are cached; hook configs are small and immutable
// for the life of the process.
func compilePattern(pattern string) *regexp.Regexp {
	patternMu.RLock()
	re, ok := patternCache[pattern]
	patternMu.RUnlock()
	if ok {
		return re
	}

	var b strings.Builder
	b.WriteString("(?i)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")

	re, err := regexp.Compile(b.String())
	if err != nil {
		// QuoteMeta makes this unreachable for any input, but matching must
		// stay total.
		re = nil
	}

	patternMu.Lock()
	patternCache[pattern] = re
	patternMu.Unlock()
	return re
}
