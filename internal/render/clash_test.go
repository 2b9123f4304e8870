package render

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/subweave/subweave/internal/compiler"
	"github.com/subweave/subweave/internal/model"
)

func TestClash(t *testing.T) {
	res := &compiler.Result{
		Proxies: []map[string]any{
			{"name": "A", "type": "ss", "server": "a.example.com", "port": 443, "cipher": "aes-128-gcm", "password": "p"},
		},
		Groups: []model.Group{
			{Name: "PICK", Type: "select", Members: []string{"A", "DIRECT"}},
			{Name: "AUTO", Type: "url-test", Members: []string{"A"}, TestURL: "http://www.gstatic.com/generate_204", IntervalSec: 300, ToleranceMS: 50},
		},
		Rules: []model.Rule{
			{Type: "IP-CIDR", Value: "10.0.0.0/8", Action: "DIRECT", NoResolve: true},
			{Type: "MATCH", Action: "PICK"},
		},
	}

	out, err := Clash(res)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(out, &doc))

	require.Equal(t, 7890, doc["port"])
	require.Equal(t, "Rule", doc["mode"])
	require.Contains(t, doc, "dns")

	proxies := doc["proxies"].([]any)
	require.Len(t, proxies, 1)
	require.Equal(t, "A", proxies[0].(map[string]any)["name"])

	groups := doc["proxy-groups"].([]any)
	require.Len(t, groups, 2)
	auto := groups[1].(map[string]any)
	require.Equal(t, "AUTO", auto["name"])
	require.Equal(t, 300, auto["interval"])
	require.Equal(t, 50, auto["tolerance"])
	pick := groups[0].(map[string]any)
	require.NotContains(t, pick, "url")

	rules := doc["rules"].([]any)
	require.Equal(t, []any{
		"IP-CIDR,10.0.0.0/8,DIRECT,no-resolve",
		"MATCH,PICK",
	}, rules)
}

func TestClash_NilResult(t *testing.T) {
	_, err := Clash(nil)
	require.Error(t, err)
}
