package sub

import (
	"strings"

	"github.com/subweave/subweave/internal/model"
)

// decodeHysteria2 decodes hysteria2:// links: password@host:port with
// sni/insecure/obfs in the query string.
func decodeHysteria2(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "hysteria2://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 hysteria2:// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)
	rest, q := cutQuery(rest)

	cred, hostPart, ok := strings.Cut(rest, "@")
	if !ok || cred == "" {
		return nil, newDecodeError("LINK_PARSE_ERROR", "hysteria2 链接缺少 @ 分隔符", raw, nil)
	}
	server, port, err := hostPort(hostPart)
	if err != nil {
		return nil, newDecodeError("LINK_PARSE_ERROR", "服务器地址或端口不合法", raw, err)
	}

	sni := q.get("sni", "peer")
	if sni == "" {
		sni = server
	}
	return &model.Hysteria2{
		Endpoint:       endpoint("Hysteria2", name, server, port),
		Password:       unescape(cred),
		SNI:            sni,
		SkipCertVerify: q.flag("insecure", "allowInsecure", "skip-cert-verify"),
		Obfs:           q.get("obfs"),
		ObfsPassword:   q.get("obfs-password", "obfsParam"),
	}, nil
}
