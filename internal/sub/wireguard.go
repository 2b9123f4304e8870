package sub

import (
	"strconv"
	"strings"

	"github.com/subweave/subweave/internal/model"
)

const defaultWireGuardPort = 51820

// decodeWireGuard decodes wireguard:// (and wg://, rewritten by the registry)
// links. Host and port live in the authority; everything else is query
// parameters. The userinfo part, when present, carries the private key. There
// is no credential fallback path: a link without key material still decodes
// and the resulting node simply has empty key fields.
func decodeWireGuard(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "wireguard://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 wireguard:// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)
	rest, q := cutQuery(rest)
	rest = strings.TrimSuffix(rest, "/")

	privateKey := ""
	if cred, hostPart, ok := strings.Cut(rest, "@"); ok {
		privateKey = unescape(cred)
		rest = hostPart
	}
	server, port, err := hostPort(rest)
	if err != nil {
		// Port is commonly omitted in the wild; fall back to the protocol
		// default before giving up.
		server, port, err = hostPort(rest + ":" + strconv.Itoa(defaultWireGuardPort))
		if err != nil {
			return nil, newDecodeError("LINK_PARSE_ERROR", "服务器地址或端口不合法", raw, err)
		}
	}

	if v := q.get("private_key", "privatekey"); v != "" {
		privateKey = v
	}
	mtu := 0
	if v := q.get("mtu"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			mtu = n
		}
	}

	return &model.WireGuard{
		Endpoint:     endpoint("WireGuard", name, server, port),
		PrivateKey:   privateKey,
		PublicKey:    q.get("public_key", "publickey"),
		PresharedKey: q.get("preshared_key", "presharedkey"),
		Addresses:    splitComma(q.get("address", "ip")),
		DNS:          splitComma(q.get("dns")),
		MTU:          mtu,
	}, nil
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
