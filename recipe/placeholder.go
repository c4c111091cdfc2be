package recipe

import (
	"regexp"
	"strings"
)

// Placeholder tokens look like {name}, where name is limited to word
// characters. The braces are reserved markers in every string field of a
// step.
var placeholderRe = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// placeholderNames returns the names of all tokens in s, in order of
// appearance, with duplicates included.
func placeholderNames(s string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}

// substitute replaces every token whose name has an entry in values. Tokens
// without a matching entry are left untouched.
func substitute(s string, values map[string]string) string {
	if !strings.Contains(s, "{") {
		return s
	}
	return placeholderRe.ReplaceAllStringFunc(s, func(tok string) string {
		name := tok[1 : len(tok)-1]
		if v, ok := values[name]; ok {
			return v
		}
		return tok
	})
}
