package sub

import (
	"strings"
	"unicode/utf8"

	"github.com/subweave/subweave/internal/codec"
	"github.com/subweave/subweave/internal/model"
)

// decodeSS handles the three historical ss:// layouts, first success wins:
//
//	A: ss://<method>:<password>@host:port            (plain SIP002)
//	B: ss://<b64(method:password)>@host:port         (base64 userinfo)
//	C: ss://<b64(method:password@host:port)>         (whole-payload base64)
//
// plus the flat legacy "server:port:method:password" remainder as a last
// resort.
func decodeSS(raw string) (model.Node, error) {
	rest, ok := strings.CutPrefix(raw, "ss://")
	if !ok {
		return nil, newDecodeError("LINK_PARSE_ERROR", "不是 ss:// 链接", raw, nil)
	}
	rest, name := cutFragment(rest)
	rest, q := cutQuery(rest)
	rest = strings.TrimSuffix(rest, "/")
	if rest == "" {
		return nil, newDecodeError("LINK_PARSE_ERROR", "ss:// 后缺少内容", raw, nil)
	}

	pluginName, pluginOpts := parseSSPlugin(q["plugin"])

	if cred, hostPart, ok := strings.Cut(rest, "@"); ok {
		method, password, err := ssCredential(cred)
		if err != nil {
			return nil, newDecodeError("LINK_PARSE_ERROR", "ss 凭证解析失败", raw, err)
		}
		server, port, err := hostPort(hostPart)
		if err != nil {
			return nil, newDecodeError("LINK_PARSE_ERROR", "服务器地址或端口不合法", raw, err)
		}
		return &model.SS{
			Endpoint:   endpoint("SS", name, server, port),
			Cipher:     strings.ToLower(method),
			Password:   password,
			PluginName: pluginName,
			PluginOpts: pluginOpts,
		}, nil
	}

	// Whole-payload base64: method:password@host:port.
	if decoded, err := codec.DecodeString(rest); err == nil && utf8.ValidString(decoded) {
		if at := strings.LastIndex(decoded, "@"); at > 0 {
			method, password, credErr := splitColon(decoded[:at])
			server, port, hostErr := hostPort(decoded[at+1:])
			if credErr == nil && hostErr == nil {
				return &model.SS{
					Endpoint:   endpoint("SS", name, server, port),
					Cipher:     strings.ToLower(method),
					Password:   password,
					PluginName: pluginName,
					PluginOpts: pluginOpts,
				}, nil
			}
		}
	}

	// Flat legacy layout: server:port:method:password.
	parts := strings.Split(rest, ":")
	if len(parts) == 4 {
		server, port, err := hostPort(parts[0] + ":" + parts[1])
		if err == nil && parts[2] != "" && parts[3] != "" {
			return &model.SS{
				Endpoint:   endpoint("SS", name, server, port),
				Cipher:     strings.ToLower(parts[2]),
				Password:   parts[3],
				PluginName: pluginName,
				PluginOpts: pluginOpts,
			}, nil
		}
	}

	return nil, newDecodeError("LINK_PARSE_ERROR", "无法识别的 ss 链接布局", raw, nil)
}

// ssCredential decodes the userinfo part: either plain "method:password" or
// its base64 wrapping.
func ssCredential(cred string) (string, string, error) {
	cred = unescape(cred)
	if strings.Contains(cred, ":") {
		return splitColon(cred)
	}
	decoded, err := codec.DecodeString(cred)
	if err != nil {
		return "", "", err
	}
	return splitColon(decoded)
}

func splitColon(s string) (string, string, error) {
	method, password, ok := strings.Cut(s, ":")
	method = strings.TrimSpace(method)
	if !ok || method == "" || password == "" {
		return "", "", errMissingColon
	}
	return method, password, nil
}

// parseSSPlugin parses the SIP002 plugin value "name;k=v;k=v". The sink only
// needs the name and options verbatim; unknown options pass through.
func parseSSPlugin(plugin string) (string, []model.KV) {
	plugin = strings.TrimSpace(plugin)
	if plugin == "" {
		return "", nil
	}
	segs := strings.Split(plugin, ";")
	name := strings.TrimSpace(segs[0])
	if name == "" {
		return "", nil
	}
	if name == "obfs-local" || name == "simple-obfs" {
		name = "obfs"
	}
	opts := make([]model.KV, 0, len(segs)-1)
	for _, seg := range segs[1:] {
		k, v, ok := strings.Cut(seg, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			continue
		}
		if k == "obfs" {
			k = "mode"
		}
		if k == "obfs-host" {
			k = "host"
		}
		opts = append(opts, model.KV{Key: k, Value: v})
	}
	return name, opts
}
