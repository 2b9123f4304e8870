package sub

import (
	"strings"

	"github.com/subweave/subweave/internal/model"
)

// decodeTrojan decodes trojan:// links: password@host:port with transport
// details in the query string. sni falls back to the server name so the TLS
// handshake always has a target.
func decodeTrojan(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "trojan://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 trojan:// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)
	rest, q := cutQuery(rest)

	cred, hostPart, ok := strings.Cut(rest, "@")
	if !ok || cred == "" {
		return nil, newDecodeError("LINK_PARSE_ERROR", "trojan 链接缺少 @ 分隔符", raw, nil)
	}
	server, port, err := hostPort(hostPart)
	if err != nil {
		return nil, newDecodeError("LINK_PARSE_ERROR", "服务器地址或端口不合法", raw, err)
	}

	t := transportFromQuery(q, server)
	t.TLS = true
	return &model.Trojan{
		Endpoint:  endpoint("Trojan", name, server, port),
		Password:  unescape(cred),
		Transport: t,
	}, nil
}

// transportFromQuery reads the query keys shared by trojan and vless links.
func transportFromQuery(q query, server string) model.Transport {
	t := model.Transport{
		Network:        q.get("type"),
		SkipCertVerify: q.flag("insecure", "allowInsecure", "skip-cert-verify"),
		SNI:            q.get("sni", "peer"),
	}
	if t.SNI == "" {
		t.SNI = server
	}
	if alpn := q.get("alpn"); alpn != "" {
		t.ALPN = strings.Split(alpn, ",")
	}
	host := q.get("host")
	switch t.Network {
	case "ws":
		t.WSPath = orSlash(q.get("path"))
		t.WSHost = host
	case "h2", "http":
		t.Network = "h2"
		t.H2Path = orSlash(q.get("path"))
		if host != "" {
			t.H2Hosts = []string{host}
		}
	case "grpc":
		t.GRPCService = q.get("serviceName", "path")
	}
	return t
}
