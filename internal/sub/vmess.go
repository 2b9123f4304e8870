package sub

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/subweave/subweave/internal/codec"
	"github.com/subweave/subweave/internal/model"
)

// decodeVMess decodes vmess:// links: the whole payload is base64 of a JSON
// object. Field values are wildly inconsistent in the wild (port as string or
// number, aid missing, extra keys), so the object is read as a loose map.
//
// A payload without "add" still decodes; the empty server is rejected later by
// the shared endpoint invariant rather than here.
func decodeVMess(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "vmess://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 vmess:// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)

	payload, err := codec.DecodeString(rest)
	if err != nil {
		return nil, newDecodeError("LINK_BASE64_ERROR", "vmess 负载 base64 解码失败", raw, err)
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return nil, newDecodeError("LINK_PARSE_ERROR", "vmess JSON 解析失败", raw, err)
	}

	if name == "" {
		name = strings.TrimSpace(fieldString(fields, "ps"))
	}
	server := strings.TrimSpace(fieldString(fields, "add"))
	port := fieldInt(fields, "port")

	network := fieldString(fields, "net")
	if network == "http" {
		network = "h2"
	}
	host := fieldString(fields, "host")
	path := fieldString(fields, "path")

	t := model.Transport{
		Network: network,
		TLS:     fieldString(fields, "tls") == "tls",
		SNI:     fieldString(fields, "sni"),
	}
	switch network {
	case "ws":
		t.WSPath = orSlash(path)
		t.WSHost = host
	case "h2":
		t.H2Path = orSlash(path)
		if host != "" {
			t.H2Hosts = []string{host}
		}
	case "grpc":
		t.GRPCService = path
	}

	return &model.VMess{
		Endpoint:  endpoint("VMess", name, server, port),
		UUID:      canonicalUUID(fieldString(fields, "id")),
		AlterID:   fieldInt(fields, "aid"),
		Cipher:    fieldString(fields, "scy"),
		Transport: t,
	}, nil
}

// canonicalUUID lowercases well-formed UUIDs so that dedup does not treat case
// variants of the same id as distinct; anything else passes through verbatim.
func canonicalUUID(s string) string {
	s = strings.TrimSpace(s)
	if u, err := uuid.Parse(s); err == nil {
		return u.String()
	}
	return s
}

func orSlash(path string) string {
	if path == "" {
		return "/"
	}
	return path
}

func fieldString(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func fieldInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
