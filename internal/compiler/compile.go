// Package compiler turns decoded nodes plus a group/rule plan into the final
// policy document. It owns the determinism rules: dedup keeps the first
// occurrence in merge order, display names are made unique by suffixing, and
// the catch-all rule always closes the rule list.
package compiler

import (
	"fmt"
	"strings"

	"github.com/subweave/subweave/internal/model"
	"github.com/subweave/subweave/internal/normalize"
)

// DefaultMaxProxies bounds the emitted node list so a single oversized
// subscription cannot blow up the document.
const DefaultMaxProxies = 200

// MemberAll is the group-member placeholder expanded to every node name.
const MemberAll = "@all"

// Result is the assembled policy document. It is built once per input and not
// mutated afterwards; the renderer only reads it.
type Result struct {
	Proxies []map[string]any
	Groups  []model.Group
	Rules   []model.Rule
}

type Options struct {
	// MaxProxies caps the node list; 0 means DefaultMaxProxies.
	MaxProxies int
}

// Dedupe drops invalid nodes and collapses duplicates.
//
// Identity is server:port:scheme. The display name is deliberately excluded:
// mirrored links advertising the same endpoint under different labels collapse
// to one entry. First-seen order is preserved. Idempotent.
func Dedupe(nodes []model.Node) []model.Node {
	seen := make(map[string]struct{}, len(nodes))
	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		ep := n.Common()
		if !ep.Valid() {
			continue
		}
		key := fmt.Sprintf("%s:%d:%s", strings.ToLower(ep.Server), ep.Port, n.Scheme())
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
	}
	return out
}

// Compile assembles the document. It never fails: worst case the node list is
// empty and a placeholder node is emitted so every group and rule still
// references something that exists.
func Compile(nodes []model.Node, groups []model.Group, rules []model.Rule, opt Options) *Result {
	maxProxies := opt.MaxProxies
	if maxProxies <= 0 {
		maxProxies = DefaultMaxProxies
	}

	nodes = Dedupe(nodes)
	if len(nodes) > maxProxies {
		nodes = nodes[:maxProxies]
	}

	proxies, names := flatten(nodes)
	if len(proxies) == 0 {
		proxies, names = placeholder()
	}

	outGroups := expandGroups(groups, names)
	selection := ""
	if len(outGroups) > 0 {
		selection = outGroups[0].Name
	}
	outRules := fixRules(rules, outGroups, selection)

	return &Result{Proxies: proxies, Groups: outGroups, Rules: outRules}
}

// flatten resolves name collisions (second and later occurrences get -2, -3,
// ...) and prunes each node map. Names never collide with the built-in
// DIRECT/REJECT sentinels.
func flatten(nodes []model.Node) ([]map[string]any, []string) {
	used := map[string]struct{}{"DIRECT": {}, "REJECT": {}}
	proxies := make([]map[string]any, 0, len(nodes))
	names := make([]string, 0, len(nodes))

	for _, n := range nodes {
		ep := n.Common()
		base := strings.TrimSpace(ep.Name)
		if base == "" {
			base = fmt.Sprintf("%s:%d", ep.Server, ep.Port)
		}

		name := base
		if _, taken := used[name]; taken {
			for i := 2; ; i++ {
				try := fmt.Sprintf("%s-%d", base, i)
				if _, taken := used[try]; !taken {
					name = try
					break
				}
			}
		}
		used[name] = struct{}{}

		m := n.Map()
		m["name"] = name
		proxies = append(proxies, normalize.Prune(m))
		names = append(names, name)
	}
	return proxies, names
}

// placeholder keeps the document structurally valid when no node survived
// decoding; downstream consumers never see missing top-level keys.
func placeholder() ([]map[string]any, []string) {
	const name = "无可用节点"
	return []map[string]any{{
		"name":     name,
		"type":     "ss",
		"server":   "127.0.0.1",
		"port":     443,
		"cipher":   "aes-256-gcm",
		"password": "placeholder",
	}}, []string{name}
}

// expandGroups resolves the provider's group plan against the actual node
// list: MemberAll becomes the node names, and members that reference neither
// a node, another group, nor a sentinel are dropped. A group that ends up
// empty falls back to DIRECT rather than being emitted dangling.
func expandGroups(plan []model.Group, nodeNames []string) []model.Group {
	known := map[string]struct{}{"DIRECT": {}, "REJECT": {}}
	for _, name := range nodeNames {
		known[name] = struct{}{}
	}
	for _, g := range plan {
		known[g.Name] = struct{}{}
	}

	out := make([]model.Group, 0, len(plan))
	for _, g := range plan {
		members := make([]string, 0, len(g.Members)+len(nodeNames))
		for _, m := range g.Members {
			if m == MemberAll {
				members = append(members, nodeNames...)
				continue
			}
			if m == g.Name {
				continue
			}
			if _, ok := known[m]; ok {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			members = []string{"DIRECT"}
		}
		g.Members = members
		out = append(out, g)
	}
	return out
}

// fixRules rewrites unknown rule targets to the selection group and forces
// exactly one trailing MATCH.
func fixRules(rules []model.Rule, groups []model.Group, selection string) []model.Rule {
	known := map[string]struct{}{"DIRECT": {}, "REJECT": {}}
	for _, g := range groups {
		known[g.Name] = struct{}{}
	}
	fallback := selection
	if fallback == "" {
		fallback = "DIRECT"
	}

	out := make([]model.Rule, 0, len(rules)+1)
	var match *model.Rule
	for _, r := range rules {
		if _, ok := known[r.Action]; !ok {
			r.Action = fallback
		}
		if r.Type == "MATCH" {
			if match == nil {
				m := r
				match = &m
			}
			continue
		}
		out = append(out, r)
	}
	if match == nil {
		match = &model.Rule{Type: "MATCH", Action: fallback}
	}
	return append(out, *match)
}
