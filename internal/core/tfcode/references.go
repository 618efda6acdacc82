package tfcode

import (
	"fmt"
	"regexp"
)

// Reference patterns, tried in this order. The order matters: a module
// output string like "module.vpc.id" also matches the generic three-segment
// resource pattern, so the specific patterns must win the match. This is a
// textual heuristic, not an expression grammar; the address-set membership
// check below is what keeps false positives (comments, lookalike string
// literals) out of the edge list.
var (
	varRefPattern      = regexp.MustCompile(`\bvar\.([a-zA-Z_][a-zA-Z0-9_-]*)`)
	moduleRefPattern   = regexp.MustCompile(`\bmodule\.([a-zA-Z_][a-zA-Z0-9_-]*)\.([a-zA-Z_][a-zA-Z0-9_-]*)`)
	dataRefPattern     = regexp.MustCompile(`\bdata\.([a-zA-Z_][a-zA-Z0-9_-]*)\.([a-zA-Z_][a-zA-Z0-9_-]*)\.([a-zA-Z_][a-zA-Z0-9_-]*)`)
	localRefPattern    = regexp.MustCompile(`\blocal\.([a-zA-Z_][a-zA-Z0-9_-]*)`)
	resourceRefPattern = regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z0-9_-]*)\.([a-zA-Z_][a-zA-Z0-9_-]*)\.([a-zA-Z_][a-zA-Z0-9_-]*)`)
)

// genericSkipPrefixes are first segments already claimed by a specific
// pattern (or never a resource, in provider's case)
var genericSkipPrefixes = map[string]bool{
	"var":      true,
	"local":    true,
	"module":   true,
	"data":     true,
	"provider": true,
}

// ExtractReferences returns every outbound edge from a block's config to
// another valid address. Candidate edges whose target is not in the address
// set are silently dropped; self-loops are never emitted. Results are
// deduplicated by (from, to, type).
func ExtractReferences(fromAddress string, config map[string]any, addresses AddressSet) []Reference {
	var refs []Reference
	seen := make(map[string]struct{})

	add := func(to string, refType ReferenceType, attribute string) {
		if !addresses.Contains(to) {
			return
		}
		key := fmt.Sprintf("%s|%s|%s", fromAddress, to, refType)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		refs = append(refs, Reference{
			From:      fromAddress,
			To:        to,
			Type:      refType,
			Attribute: attribute,
		})
	}

	walkConfig(config, func(s string) {
		for _, match := range varRefPattern.FindAllStringSubmatch(s, -1) {
			add("var."+match[1], RefVariable, "")
		}
		for _, match := range moduleRefPattern.FindAllStringSubmatch(s, -1) {
			add("module."+match[1], RefModule, match[2])
		}
		for _, match := range dataRefPattern.FindAllStringSubmatch(s, -1) {
			add(fmt.Sprintf("data.%s.%s", match[1], match[2]), RefDataSource, match[3])
		}
		for _, match := range localRefPattern.FindAllStringSubmatch(s, -1) {
			add("local."+match[1], RefLocal, "")
		}
		for _, match := range resourceRefPattern.FindAllStringSubmatch(s, -1) {
			if genericSkipPrefixes[match[1]] {
				continue
			}
			target := fmt.Sprintf("%s.%s", match[1], match[2])
			if target == fromAddress {
				continue
			}
			add(target, RefResource, match[3])
		}
	})

	return refs
}

// walkConfig visits every string leaf in a config value tree
func walkConfig(value any, visit func(string)) {
	switch v := value.(type) {
	case string:
		visit(v)
	case map[string]any:
		for _, child := range v {
			walkConfig(child, visit)
		}
	case []any:
		for _, child := range v {
			walkConfig(child, visit)
		}
	}
}

// ExtractAll computes the full deduplicated edge list for a snapshot.
// Locals contribute edges per key, with local.<key> as the from address.
func ExtractAll(s *Snapshot) []Reference {
	addresses := Addresses(s)

	var all []Reference
	seen := make(map[string]struct{})

	collect := func(refs []Reference) {
		for _, r := range refs {
			key := fmt.Sprintf("%s|%s|%s", r.From, r.To, r.Type)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, r)
		}
	}

	for _, b := range s.Blocks {
		switch b.Kind {
		case KindLocals:
			for key, value := range b.Config {
				from := "local." + key
				collect(ExtractReferences(from, map[string]any{key: value}, addresses))
			}
		case KindResource, KindData, KindModule, KindOutput:
			if b.Address == "" {
				continue
			}
			collect(ExtractReferences(b.Address, b.Config, addresses))
		}
	}

	return all
}
