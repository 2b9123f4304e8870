package sub

import (
	"strings"

	"github.com/subweave/subweave/internal/model"
)

// decodeTUIC decodes tuic:// links: uuid:password@host:port. The password may
// itself contain colons, so only the first colon splits the credential.
func decodeTUIC(raw string) (model.Node, error) {
	c, err := quicCredential(raw, "tuic")
	if err != nil {
		return nil, err
	}
	return &model.TUIC{
		Endpoint:       endpoint("TUIC", c.name, c.server, c.port),
		UUID:           c.uuid,
		Password:       c.password,
		SNI:            c.sni,
		SkipCertVerify: c.skipCertVerify,
	}, nil
}

// decodeJuicity decodes juicity:// links, which share tuic's credential and
// endpoint layout.
func decodeJuicity(raw string) (model.Node, error) {
	c, err := quicCredential(raw, "juicity")
	if err != nil {
		return nil, err
	}
	return &model.Juicity{
		Endpoint:       endpoint("Juicity", c.name, c.server, c.port),
		UUID:           c.uuid,
		Password:       c.password,
		SNI:            c.sni,
		SkipCertVerify: c.skipCertVerify,
	}, nil
}

type quicLink struct {
	name           string
	server         string
	port           int
	uuid           string
	password       string
	sni            string
	skipCertVerify bool
}

func quicCredential(raw string, scheme string) (quicLink, error) {
	rest, ok := strings.CutPrefix(raw, scheme+"://")
	if !ok {
		return quicLink{}, newDecodeError("LINK_PARSE_ERROR", "不是 "+scheme+":// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)
	rest, q := cutQuery(rest)

	cred, hostPart, ok := strings.Cut(rest, "@")
	if !ok || cred == "" {
		return quicLink{}, newDecodeError("LINK_PARSE_ERROR", scheme+" 链接缺少 @ 分隔符", raw, nil)
	}
	id, password, ok := strings.Cut(unescape(cred), ":")
	if !ok {
		password = q.get("password")
	}
	server, port, err := hostPort(hostPart)
	if err != nil {
		return quicLink{}, newDecodeError("LINK_PARSE_ERROR", "服务器地址或端口不合法", raw, err)
	}

	sni := q.get("sni")
	if sni == "" {
		sni = server
	}
	return quicLink{
		name:           name,
		server:         server,
		port:           port,
		uuid:           canonicalUUID(id),
		password:       password,
		sni:            sni,
		skipCertVerify: q.flag("insecure", "allowInsecure", "allow_insecure"),
	}, nil
}
