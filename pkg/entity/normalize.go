package entity

import (
	"regexp"
	"strings"
)

var genericArg = regexp.MustCompile(`<([^>]*)>`)

// Normalize returns the text between the first '<' and the following '>' when
// s contains such a pair, and s unchanged otherwise. Normalize is idempotent.
func Normalize(s string) string {
	if m := genericArg.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// SimpleName returns the last dot-separated segment of a type name. A name
// without a dot, or ending in one, is returned unchanged.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return name
}
