package model

import "fmt"

type KV struct {
	Key   string
	Value string
}

// Endpoint is the part shared by every node variant.
//
// Name comes from the link fragment (#name). It may be empty at decode time and
// is not guaranteed to be globally unique; the compiler phase fills fallbacks
// and resolves collisions.
type Endpoint struct {
	Name   string
	Server string
	Port   int
}

// Valid reports whether the endpoint can be emitted at all. A node with an
// empty server or an out-of-range port is dropped before dedup.
func (e Endpoint) Valid() bool {
	return e.Server != "" && e.Port >= 1 && e.Port <= 65535
}

// FallbackName builds the deterministic display name used when the link
// carried no fragment.
func (e Endpoint) FallbackName(label string) string {
	return fmt.Sprintf("%s-%s:%d", label, e.Server, e.Port)
}

// Common returns the endpoint itself; embedding Endpoint into a variant
// promotes it into that variant's Node implementation.
func (e *Endpoint) Common() *Endpoint { return e }

// Node is one normalized proxy node. Each scheme has its own variant type so
// that only the fields meaningful for that scheme exist at all; there is no
// "check if key exists" convention left in the pipeline.
//
// Map returns the flattened Clash-shaped representation. It may contain empty
// values; normalize.Prune strips them before the document is assembled.
type Node interface {
	Scheme() string
	Common() *Endpoint
	Map() map[string]any
}

// Transport is the optional secondary-transport overlay used by the schemes
// that tunnel over ws/h2/grpc (vmess, vless, trojan).
type Transport struct {
	Network        string // tcp/ws/h2/grpc; empty means tcp
	TLS            bool
	SkipCertVerify bool
	SNI            string
	WSPath         string
	WSHost         string
	H2Hosts        []string
	H2Path         string
	GRPCService    string
	ALPN           []string
}

// apply writes the overlay into a Clash proxy map. sniKey differs per scheme
// ("servername" for vmess/vless, "sni" for trojan).
func (t Transport) apply(m map[string]any, sniKey string) {
	network := t.Network
	if network == "" {
		network = "tcp"
	}
	m["network"] = network
	m["tls"] = t.TLS
	if t.SkipCertVerify {
		m["skip-cert-verify"] = true
	}
	if t.SNI != "" {
		m[sniKey] = t.SNI
	}
	if len(t.ALPN) > 0 {
		m["alpn"] = anySlice(t.ALPN)
	}
	switch network {
	case "ws":
		ws := map[string]any{"path": t.WSPath}
		if t.WSHost != "" {
			ws["headers"] = map[string]any{"Host": t.WSHost}
		}
		m["ws-opts"] = ws
	case "h2":
		m["h2-opts"] = map[string]any{
			"path": t.H2Path,
			"host": anySlice(t.H2Hosts),
		}
	case "grpc":
		m["grpc-opts"] = map[string]any{"grpc-service-name": t.GRPCService}
	}
}

func anySlice(in []string) []any {
	if len(in) == 0 {
		return nil
	}
	out := make([]any, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

type SS struct {
	Endpoint
	Cipher   string
	Password string

	// PluginName/PluginOpts come from the SIP002 "plugin" query parameter.
	// PluginOpts must preserve order (no map) to keep decode deterministic.
	PluginName string
	PluginOpts []KV
}

func (n *SS) Scheme() string { return "ss" }

func (n *SS) Map() map[string]any {
	m := baseMap(n.Endpoint, "ss")
	m["cipher"] = n.Cipher
	m["password"] = n.Password
	if n.PluginName != "" {
		m["plugin"] = n.PluginName
		opts := map[string]any{}
		for _, kv := range n.PluginOpts {
			opts[kv.Key] = kv.Value
		}
		m["plugin-opts"] = opts
	}
	return m
}

// SSR is a shadowsocksr node projected onto the ss output shape. The sink
// format has no protocol/obfs layer, so those fields are dropped at decode
// time; this is an intentional lossy conversion, kept distinct from SS so the
// dedup identity still sees the original scheme.
type SSR struct {
	Endpoint
	Cipher   string
	Password string
}

func (n *SSR) Scheme() string { return "ssr" }

func (n *SSR) Map() map[string]any {
	m := baseMap(n.Endpoint, "ss")
	m["cipher"] = n.Cipher
	m["password"] = n.Password
	return m
}

type VMess struct {
	Endpoint
	UUID      string
	AlterID   int
	Cipher    string
	Transport Transport
}

func (n *VMess) Scheme() string { return "vmess" }

func (n *VMess) Map() map[string]any {
	m := baseMap(n.Endpoint, "vmess")
	m["uuid"] = n.UUID
	m["alterId"] = n.AlterID
	cipher := n.Cipher
	if cipher == "" {
		cipher = "auto"
	}
	m["cipher"] = cipher
	n.Transport.apply(m, "servername")
	return m
}

type Trojan struct {
	Endpoint
	Password  string
	Transport Transport
}

func (n *Trojan) Scheme() string { return "trojan" }

func (n *Trojan) Map() map[string]any {
	m := baseMap(n.Endpoint, "trojan")
	m["password"] = n.Password
	n.Transport.apply(m, "sni")
	// Trojan is TLS on the wire regardless of the query string.
	m["tls"] = true
	return m
}

// RealityOpts carries the reality-specific keys extracted from
// security=reality links.
type RealityOpts struct {
	PublicKey string
	ShortID   string
}

type VLess struct {
	Endpoint
	UUID      string
	Flow      string
	Transport Transport
	Reality   *RealityOpts
}

func (n *VLess) Scheme() string { return "vless" }

func (n *VLess) Map() map[string]any {
	m := baseMap(n.Endpoint, "vless")
	m["uuid"] = n.UUID
	if n.Flow != "" {
		m["flow"] = n.Flow
	}
	n.Transport.apply(m, "servername")
	if n.Reality != nil {
		m["reality-opts"] = map[string]any{
			"public-key": n.Reality.PublicKey,
			"short-id":   n.Reality.ShortID,
		}
	}
	return m
}

type Hysteria2 struct {
	Endpoint
	Password       string
	SNI            string
	SkipCertVerify bool
	Obfs           string
	ObfsPassword   string
}

func (n *Hysteria2) Scheme() string { return "hysteria2" }

func (n *Hysteria2) Map() map[string]any {
	m := baseMap(n.Endpoint, "hysteria2")
	m["password"] = n.Password
	m["sni"] = n.SNI
	if n.SkipCertVerify {
		m["skip-cert-verify"] = true
	}
	if n.Obfs != "" {
		m["obfs"] = n.Obfs
		m["obfs-password"] = n.ObfsPassword
	}
	return m
}

type TUIC struct {
	Endpoint
	UUID           string
	Password       string
	SNI            string
	SkipCertVerify bool
}

func (n *TUIC) Scheme() string { return "tuic" }

func (n *TUIC) Map() map[string]any {
	m := baseMap(n.Endpoint, "tuic")
	m["uuid"] = n.UUID
	m["password"] = n.Password
	m["sni"] = n.SNI
	if n.SkipCertVerify {
		m["skip-cert-verify"] = true
	}
	return m
}

type Juicity struct {
	Endpoint
	UUID           string
	Password       string
	SNI            string
	SkipCertVerify bool
}

func (n *Juicity) Scheme() string { return "juicity" }

func (n *Juicity) Map() map[string]any {
	m := baseMap(n.Endpoint, "juicity")
	m["uuid"] = n.UUID
	m["password"] = n.Password
	m["sni"] = n.SNI
	if n.SkipCertVerify {
		m["skip-cert-verify"] = true
	}
	return m
}

type WireGuard struct {
	Endpoint
	PrivateKey   string
	PublicKey    string
	PresharedKey string
	Addresses    []string
	DNS          []string
	MTU          int
}

func (n *WireGuard) Scheme() string { return "wireguard" }

func (n *WireGuard) Map() map[string]any {
	m := baseMap(n.Endpoint, "wireguard")
	m["private-key"] = n.PrivateKey
	m["public-key"] = n.PublicKey
	if n.PresharedKey != "" {
		m["pre-shared-key"] = n.PresharedKey
	}
	if len(n.Addresses) > 0 {
		m["ip"] = n.Addresses[0]
	}
	if len(n.Addresses) > 1 {
		m["ipv6"] = n.Addresses[1]
	}
	if len(n.DNS) > 0 {
		m["dns"] = anySlice(n.DNS)
	}
	if n.MTU > 0 {
		m["mtu"] = n.MTU
	}
	return m
}

func baseMap(e Endpoint, typ string) map[string]any {
	return map[string]any{
		"name":   e.Name,
		"type":   typ,
		"server": e.Server,
		"port":   e.Port,
	}
}
