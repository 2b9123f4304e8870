package rules

import (
	"context"

	"github.com/subweave/subweave/internal/compiler"
	"github.com/subweave/subweave/internal/model"
)

// Provider hands the assembler its routing plan: an ordered rule list and the
// selector groups those rules may target. The first group in the plan is the
// manual selection group; unknown rule targets get rewritten to it.
type Provider interface {
	Plan(ctx context.Context) ([]model.Group, []model.Rule, error)
}

// Static is the built-in ACL4SSR-style plan. Display labels (emoji included)
// live here and only here; the assembler treats them as opaque names.
type Static struct{}

const (
	groupSelect    = "🚀 节点选择"
	groupAuto      = "♻️ 自动选择"
	groupBilibili  = "📺 哔哩哔哩"
	groupMedia     = "🌍 国外媒体"
	groupMicrosoft = "Ⓜ️ 微软服务"
	groupApple     = "🍎 苹果服务"
	groupDirect    = "🎯 全球直连"
	groupAdBlock   = "🛑 广告拦截"
)

func (Static) Plan(context.Context) ([]model.Group, []model.Rule, error) {
	groups := []model.Group{
		{Name: groupSelect, Type: "select", Members: []string{groupAuto, compiler.MemberAll, "DIRECT", "REJECT"}},
		{Name: groupAuto, Type: "url-test", Members: []string{compiler.MemberAll},
			TestURL: "http://www.gstatic.com/generate_204", IntervalSec: 300, ToleranceMS: 50},
		{Name: groupBilibili, Type: "select", Members: []string{groupSelect, groupAuto, groupDirect}},
		{Name: groupMedia, Type: "select", Members: []string{groupSelect, groupAuto, groupDirect}},
		{Name: groupMicrosoft, Type: "select", Members: []string{groupSelect, groupDirect}},
		{Name: groupApple, Type: "select", Members: []string{groupSelect, groupDirect}},
		{Name: groupDirect, Type: "select", Members: []string{"DIRECT"}},
		{Name: groupAdBlock, Type: "select", Members: []string{"REJECT", "DIRECT"}},
	}
	rules := []model.Rule{
		{Type: "DOMAIN-SUFFIX", Value: "ads.com", Action: groupAdBlock},
		{Type: "DOMAIN-KEYWORD", Value: "adservice", Action: groupAdBlock},
		{Type: "DOMAIN-SUFFIX", Value: "bilibili.com", Action: groupBilibili},
		{Type: "DOMAIN-SUFFIX", Value: "bilibili.tv", Action: groupBilibili},
		{Type: "DOMAIN-SUFFIX", Value: "netflix.com", Action: groupMedia},
		{Type: "DOMAIN-SUFFIX", Value: "disneyplus.com", Action: groupMedia},
		{Type: "DOMAIN-SUFFIX", Value: "microsoft.com", Action: groupMicrosoft},
		{Type: "DOMAIN-SUFFIX", Value: "apple.com", Action: groupApple},
		{Type: "GEOIP", Value: "CN", Action: groupDirect},
		{Type: "MATCH", Action: groupSelect},
	}
	return groups, rules, nil
}

// FetchFunc retrieves rule text from a URL; it matches fetch.Text so the rules
// package does not depend on the HTTP layer directly.
type FetchFunc func(ctx context.Context, url string) (string, error)

// Remote layers a fetched rule list over the static plan: remote rules replace
// the static ones (the trailing MATCH is re-imposed by the assembler), while
// the group plan stays the built-in one so every target can be resolved or
// rewritten.
type Remote struct {
	URL   string
	Fetch FetchFunc
}

func (r Remote) Plan(ctx context.Context) ([]model.Group, []model.Rule, error) {
	groups, fallback, err := Static{}.Plan(ctx)
	if err != nil {
		return nil, nil, err
	}
	text, err := r.Fetch(ctx, r.URL)
	if err != nil {
		return nil, nil, err
	}
	parsed := ParseList(text)
	if len(parsed) == 0 {
		return groups, fallback, nil
	}
	return groups, parsed, nil
}
