package osinfo

import "strings"

// Matchers pull single values out of the loosely structured text that
// release files and version tools emit.

// trimmedValue returns the whole input with surrounding whitespace
// removed.
func trimmedValue(s string) string {
	return strings.TrimSpace(s)
}

// prefixedWord returns the first whitespace-delimited word following
// prefix, or "" and false when the prefix does not occur.
func prefixedWord(s, prefix string) (string, bool) {
	start := strings.Index(s, prefix)
	if start < 0 {
		return "", false
	}
	rest := strings.TrimLeft(s[start+len(prefix):], " \t")
	if end := strings.IndexFunc(rest, isSpace); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

// prefixedVersion is prefixedWord restricted to words that look like
// versions: a leading or trailing dot disqualifies the match.
func prefixedVersion(s, prefix string) (string, bool) {
	word, ok := prefixedWord(s, prefix)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(word, ".") || strings.HasSuffix(word, ".") {
		return "", false
	}
	return word, true
}

// keyValue looks for a `key=value` line and returns the value with
// quotes and whitespace stripped.
func keyValue(s, key string) (string, bool) {
	prefix := key + "="
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, prefix) {
			value := strings.TrimFunc(line[len(prefix):], func(r rune) bool {
				return r == '"' || isSpace(r)
			})
			return value, true
		}
	}
	return "", false
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
