// Package render serializes an assembled document to Clash YAML.
package render

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/subweave/subweave/internal/compiler"
	"github.com/subweave/subweave/internal/model"
)

// Clash serializes the result as a full Clash config: a fixed client head
// (ports, DNS) followed by proxies, proxy-groups and rules. Key order inside
// each mapping follows yaml.v3's map ordering; consumers parse the document,
// they do not diff it byte-for-byte.
func Clash(res *compiler.Result) ([]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("render: nil result")
	}

	doc := head()
	doc["proxies"] = res.Proxies
	doc["proxy-groups"] = groupMaps(res.Groups)
	doc["rules"] = ruleLines(res.Rules)

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render: marshal clash document: %w", err)
	}
	return out, nil
}

func head() map[string]any {
	return map[string]any{
		"port":                7890,
		"socks-port":          7891,
		"allow-lan":           true,
		"mode":                "Rule",
		"log-level":           "info",
		"external-controller": "0.0.0.0:9090",
		"dns": map[string]any{
			"enable":             true,
			"listen":             "0.0.0.0:53",
			"default-nameserver": []string{"223.5.5.5", "8.8.8.8"},
			"enhanced-mode":      "fake-ip",
			"fake-ip-range":      "198.18.0.1/16",
			"nameserver": []string{
				"https://doh.pub/dns-query",
				"https://dns.alidns.com/dns-query",
			},
		},
	}
}

func groupMaps(groups []model.Group) []map[string]any {
	out := make([]map[string]any, 0, len(groups))
	for _, g := range groups {
		m := map[string]any{
			"name":    g.Name,
			"type":    g.Type,
			"proxies": g.Members,
		}
		if g.TestURL != "" {
			m["url"] = g.TestURL
		}
		if g.IntervalSec > 0 {
			m["interval"] = g.IntervalSec
		}
		if g.ToleranceMS > 0 {
			m["tolerance"] = g.ToleranceMS
		}
		out = append(out, m)
	}
	return out
}

// ruleLines renders rules back to Clash classical text form. MATCH has no
// value field.
func ruleLines(rules []model.Rule) []string {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		var b strings.Builder
		b.WriteString(r.Type)
		if r.Type != "MATCH" {
			b.WriteString(",")
			b.WriteString(r.Value)
		}
		b.WriteString(",")
		b.WriteString(r.Action)
		if r.NoResolve {
			b.WriteString(",no-resolve")
		}
		out = append(out, b.String())
	}
	return out
}
