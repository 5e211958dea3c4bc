package config

import (
	"sort"

	"github.com/pelletier/go-toml/v2/unstable"
)

// declarationOrder records the order in which placeholder and conditional
// keys first appear in a document. Decoding into maps loses that order.
type declarationOrder struct {
	// placeholders maps a conditional expression ("" for top level) to
	// placeholder names in order of appearance.
	placeholders map[string][]string
	conditionals []string
}

func scanDeclarationOrder(data []byte) (*declarationOrder, error) {
	order := &declarationOrder{placeholders: map[string][]string{}}
	seenPlaceholder := map[string]map[string]bool{}
	seenConditional := map[string]bool{}

	record := func(path []string) {
		switch {
		case len(path) >= 2 && path[0] == "placeholders":
			order.addPlaceholder(seenPlaceholder, "", path[1])
		case len(path) >= 2 && path[0] == "conditional":
			expr := path[1]
			if !seenConditional[expr] {
				seenConditional[expr] = true
				order.conditionals = append(order.conditionals, expr)
			}
			if len(path) >= 4 && path[2] == "placeholders" {
				order.addPlaceholder(seenPlaceholder, expr, path[3])
			}
		}
	}

	var current []string
	p := unstable.Parser{}
	p.Reset(data)
	for p.NextExpression() {
		expr := p.Expression()
		switch expr.Kind {
		case unstable.Table, unstable.ArrayTable:
			current = keyParts(expr)
			record(current)
		case unstable.KeyValue:
			walkKeyValue(current, expr, record)
		}
	}
	if err := p.Error(); err != nil {
		return nil, err
	}
	return order, nil
}

// walkKeyValue records the path of a key/value and, for inline tables, the
// paths of the nested keys in the order they are written.
func walkKeyValue(prefix []string, kv *unstable.Node, record func([]string)) {
	full := append(append([]string{}, prefix...), keyParts(kv)...)
	record(full)

	value := kv.Value()
	if value.Kind != unstable.InlineTable {
		return
	}
	it := value.Children()
	for it.Next() {
		if child := it.Node(); child.Kind == unstable.KeyValue {
			walkKeyValue(full, child, record)
		}
	}
}

func (o *declarationOrder) addPlaceholder(seen map[string]map[string]bool, expr, name string) {
	if seen[expr] == nil {
		seen[expr] = map[string]bool{}
	}
	if seen[expr][name] {
		return
	}
	seen[expr][name] = true
	o.placeholders[expr] = append(o.placeholders[expr], name)
}

func keyParts(n *unstable.Node) []string {
	var parts []string
	it := n.Key()
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// orderedKeys returns the keys of m, declared ones first in declaration
// order, then any others sorted.
func orderedKeys[V any](m map[string]V, declared []string) []string {
	keys := make([]string, 0, len(m))
	used := make(map[string]bool, len(m))
	for _, name := range declared {
		if _, ok := m[name]; ok && !used[name] {
			keys = append(keys, name)
			used[name] = true
		}
	}
	var rest []string
	for name := range m {
		if !used[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
