// Package env expands ${env.KEY} expressions found in configuration documents.
package env

import (
	"os"
	"strings"
	"unicode"
)

const prefix = "${env."

// Lookup resolves an environment variable name.
type Lookup func(key string) string

// Expand replaces every ${env.KEY} in value with lookup(KEY). KEY must consist
// of letters, digits or '_'; anything else leaves the prefix as literal text
// and scanning resumes right after it. An unterminated expression is copied
// verbatim.
func Expand(value string, lookup Lookup) string {
	if lookup == nil {
		lookup = os.Getenv
	}
	var b strings.Builder
	for {
		idx := strings.Index(value, prefix)
		if idx < 0 {
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:idx])
		rest := value[idx+len(prefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(value[idx:])
			return b.String()
		}
		key := rest[:end]
		if !validKey(key) {
			b.WriteString(prefix)
			value = rest
			continue
		}
		b.WriteString(lookup(key))
		value = rest[end+1:]
	}
}

// ExpandOS expands value against the process environment.
func ExpandOS(value string) string {
	return Expand(value, os.Getenv)
}

func validKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
