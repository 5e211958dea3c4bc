package render

import (
	"sort"
	"strings"

	"github.com/Masterminds/sprig/v3"
	"github.com/huandu/xstrings"
)

// CaseFuncs maps a case-conversion name to its implementation. Every entry
// is available as a template filter and as a to_<name> hook builtin.
var CaseFuncs = buildCaseFuncs()

func buildCaseFuncs() map[string]func(string) string {
	fm := sprig.GenericFuncMap()
	kebab := fm["kebabcase"].(func(string) string)
	snake := fm["snakecase"].(func(string) string)
	pascal := fm["camelcase"].(func(string) string)
	title := fm["title"].(func(string) string)

	return map[string]func(string) string{
		"kebab_case":        kebab,
		"snake_case":        snake,
		"pascal_case":       pascal,
		"upper_camel_case":  pascal,
		"lower_camel_case":  xstrings.ToCamelCase,
		"shouty_snake_case": func(s string) string { return strings.ToUpper(snake(s)) },
		"shouty_kebab_case": func(s string) string { return strings.ToUpper(kebab(s)) },
		"title_case": func(s string) string {
			return title(strings.ReplaceAll(snake(s), "_", " "))
		},
	}
}

// CaseNames returns the case-conversion names, sorted.
func CaseNames() []string {
	names := make([]string, 0, len(CaseFuncs))
	for name := range CaseFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
