package sub

import (
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/subweave/subweave/internal/codec"
	"github.com/subweave/subweave/internal/model"
)

// decodeSSR decodes ssr:// links.
//
// Payload layout after base64:
//
//	server:port:protocol:method:obfs:b64(password)/?remarks=b64&group=b64&obfsparam=b64&protoparam=b64
//
// The positional block must carry all six fields. protocol/obfs and their
// parameters have no equivalent in the output format and are dropped; the
// result is a lossy projection onto the ss shape.
func decodeSSR(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "ssr://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 ssr:// 链接", raw, nil)
	}
	decoded, err := codec.DecodeString(rest)
	if err != nil {
		return nil, newDecodeError("LINK_BASE64_ERROR", "ssr 负载 base64 解码失败", raw, err)
	}

	main, params, _ := strings.Cut(decoded, "/?")
	segs := strings.Split(main, ":")
	if len(segs) < 6 {
		return nil, newDecodeError("LINK_PARSE_ERROR", "ssr 位置字段不足 6 个", raw, nil)
	}

	// The server itself may contain ':' (IPv6); everything before the last
	// five fields belongs to it.
	passwordB64 := segs[len(segs)-1]
	obfs := segs[len(segs)-2]
	method := segs[len(segs)-3]
	protocol := segs[len(segs)-4]
	portStr := segs[len(segs)-5]
	server := strings.Join(segs[:len(segs)-5], ":")

	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil || port < 1 || port > 65535 || server == "" {
		return nil, newDecodeError("LINK_PARSE_ERROR", "ssr 服务器地址或端口不合法", raw, err)
	}
	password, err := codec.DecodeString(passwordB64)
	if err != nil {
		return nil, newDecodeError("LINK_BASE64_ERROR", "ssr password base64 解码失败", raw, err)
	}

	name := ""
	if remarks := parseQuery(params)["remarks"]; remarks != "" {
		if decoded, err := codec.DecodeString(remarks); err == nil {
			name = strings.TrimSpace(decoded)
		}
	}

	if protocol != "" || obfs != "" {
		logrus.WithFields(logrus.Fields{
			"server":   server,
			"protocol": protocol,
			"obfs":     obfs,
		}).Debug("ssr 协议/混淆层在转换中被丢弃")
	}

	return &model.SSR{
		Endpoint: endpoint("SSR", name, server, port),
		Cipher:   strings.ToLower(method),
		Password: password,
	}, nil
}
