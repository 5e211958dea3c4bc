package generator

import (
	"bufio"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/tacogips/projgen/internal/template/condition"
	"github.com/tacogips/projgen/internal/template/model"
	"github.com/tacogips/projgen/internal/template/schema"
)

type rule struct {
	glob    string
	negate  bool
	dirOnly bool
}

// Matcher matches slash-separated relative paths against gitignore-style
// patterns. The last matching pattern wins; a "!" pattern re-includes.
// A pattern without a slash matches at any depth, a pattern naming a
// directory matches everything below it, and a trailing "/" restricts a
// pattern to directories.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles patterns. Blank lines and "#" comments are skipped.
func NewMatcher(patterns []string) (*Matcher, error) {
	m := &Matcher{}
	for _, raw := range patterns {
		p := strings.TrimSpace(raw)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}

		var r rule
		if strings.HasPrefix(p, "!") {
			r.negate = true
			p = p[1:]
		}
		if strings.HasSuffix(p, "/") {
			r.dirOnly = true
			p = strings.TrimRight(p, "/")
		}
		anchored := strings.Contains(p, "/")
		p = strings.TrimPrefix(p, "/")
		if p == "" {
			continue
		}
		if !anchored {
			p = "**/" + p
		}
		if !doublestar.ValidatePattern(p) {
			return nil, newGeneratorError(GeneratorInvalidPattern, "invalid pattern", raw, nil)
		}
		r.glob = p
		m.rules = append(m.rules, r)
	}
	return m, nil
}

// LoadIgnoreFile reads a gitignore-style file. A missing file yields an
// empty pattern list.
func LoadIgnoreFile(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var patterns []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		patterns = append(patterns, sc.Text())
	}
	return patterns, sc.Err()
}

// Empty reports whether m has no patterns.
func (m *Matcher) Empty() bool {
	return m == nil || len(m.rules) == 0
}

// Match reports whether rel, or one of its parent directories, is matched.
func (m *Matcher) Match(rel string) bool {
	if m.Empty() {
		return false
	}
	rel = strings.TrimPrefix(path.Clean(filepath.ToSlash(rel)), "/")

	// Candidates are rel itself followed by each parent directory.
	candidates := []string{rel}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		candidates = append(candidates, dir)
	}

	matched := false
	for _, r := range m.rules {
		for i, c := range candidates {
			if r.dirOnly && i == 0 {
				continue
			}
			if doublestar.MatchUnvalidated(r.glob, c) {
				matched = !r.negate
				break
			}
		}
	}
	return matched
}

// SelectionRules decide which template files reach the destination and
// which of them are substituted.
type SelectionRules struct {
	include *Matcher
	exclude *Matcher
	ignore  *Matcher
}

// NewSelectionRules compiles the [template] section together with every
// conditional table whose guard holds against bindings.
//
// When the template declares include patterns, exclude patterns are not
// consulted. A guard that references a hidden placeholder does not hold.
func NewSelectionRules(section model.TemplateSection, sch *schema.Schema, bindings map[string]interface{}) (*SelectionRules, error) {
	include := append([]string(nil), section.Include...)
	exclude := append([]string(nil), section.Exclude...)
	var ignore []string

	if sch != nil {
		for _, c := range sch.Conditionals {
			ok, err := c.When.Eval(bindings)
			if err != nil {
				var condErr *condition.ConditionError
				if errors.As(err, &condErr) && condErr.Type == condition.MissingVariable {
					if _, known := sch.Lookup(condErr.Name); known {
						log.Debug().Str("when", c.When.String()).Str("hidden", condErr.Name).Msg("conditional skipped")
						continue
					}
				}
				return nil, newGeneratorError(GeneratorInvalidPattern, "failed to evaluate conditional", c.When.String(), err)
			}
			if !ok {
				continue
			}
			log.Debug().Str("when", c.When.String()).Strs("ignore", c.Ignore).Msg("conditional holds")
			include = append(include, c.Include...)
			exclude = append(exclude, c.Exclude...)
			ignore = append(ignore, c.Ignore...)
		}
	}

	rules := &SelectionRules{}
	var err error
	if rules.include, err = NewMatcher(include); err != nil {
		return nil, err
	}
	if rules.include.Empty() {
		if rules.exclude, err = NewMatcher(exclude); err != nil {
			return nil, err
		}
	}
	if rules.ignore, err = NewMatcher(ignore); err != nil {
		return nil, err
	}
	return rules, nil
}

// Ignored reports whether rel is removed from the output.
func (r *SelectionRules) Ignored(rel string) bool {
	return r != nil && r.ignore.Match(rel)
}

// Substitute reports whether rel has its name and content rendered.
// Files that are not substituted are copied verbatim.
func (r *SelectionRules) Substitute(rel string) bool {
	if r == nil {
		return true
	}
	if !r.include.Empty() {
		return r.include.Match(rel)
	}
	return !r.exclude.Match(rel)
}
