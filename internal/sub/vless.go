package sub

import (
	"strings"

	"github.com/subweave/subweave/internal/model"
)

// decodeVLess decodes vless:// links (and reality:// links, which the
// registry rewrites to vless:// before dispatch). security=reality pulls the
// pbk/sid pair into a dedicated sub-object; tls/xtls/reality all mean "TLS
// enabled".
func decodeVLess(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "vless://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 vless:// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)
	rest, q := cutQuery(rest)

	cred, hostPart, ok := strings.Cut(rest, "@")
	if !ok || cred == "" {
		return nil, newDecodeError("LINK_PARSE_ERROR", "vless 链接缺少 @ 分隔符", raw, nil)
	}
	server, port, err := hostPort(hostPart)
	if err != nil {
		return nil, newDecodeError("LINK_PARSE_ERROR", "服务器地址或端口不合法", raw, err)
	}

	t := transportFromQuery(q, server)
	security := strings.ToLower(q.get("security"))
	switch security {
	case "tls", "xtls", "reality":
		t.TLS = true
	}

	var reality *model.RealityOpts
	if security == "reality" {
		reality = &model.RealityOpts{
			PublicKey: q.get("pbk"),
			ShortID:   q.get("sid"),
		}
	}

	return &model.VLess{
		Endpoint:  endpoint("VLESS", name, server, port),
		UUID:      canonicalUUID(unescape(cred)),
		Flow:      q.get("flow"),
		Transport: t,
		Reality:   reality,
	}, nil
}
