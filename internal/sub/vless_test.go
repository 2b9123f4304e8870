package sub

import (
	"testing"

	"github.com/subweave/subweave/internal/model"
)

func TestDecodeVLess_Reality(t *testing.T) {
	n, err := decodeVLess("vless://B831381D-6324-4D53-AD4F-8CDA48B30811@vl.example.com:443?security=reality&pbk=publickey123&sid=ab12&flow=xtls-rprx-vision&type=grpc&serviceName=grpcsvc#VL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vl := n.(*model.VLess)
	if vl.UUID != "b831381d-6324-4d53-ad4f-8cda48b30811" {
		t.Fatalf("uuid=%q, want lowercase canonical form", vl.UUID)
	}
	if vl.Flow != "xtls-rprx-vision" {
		t.Fatalf("flow=%q, want=%q", vl.Flow, "xtls-rprx-vision")
	}
	if !vl.Transport.TLS {
		t.Fatalf("tls=false, want true for security=reality")
	}
	if vl.Transport.GRPCService != "grpcsvc" {
		t.Fatalf("grpc service=%q, want=%q", vl.Transport.GRPCService, "grpcsvc")
	}
	if vl.Reality == nil || vl.Reality.PublicKey != "publickey123" || vl.Reality.ShortID != "ab12" {
		t.Fatalf("reality=%+v, want pbk/sid extracted", vl.Reality)
	}

	m := vl.Map()
	ro, ok := m["reality-opts"].(map[string]any)
	if !ok || ro["public-key"] != "publickey123" {
		t.Fatalf("reality-opts=%v", m["reality-opts"])
	}
}

func TestDecodeVLess_PlainTLS(t *testing.T) {
	n, err := decodeVLess("vless://uuid-here@vl.example.com:443?security=tls&sni=v.example.com#V")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vl := n.(*model.VLess)
	if !vl.Transport.TLS || vl.Reality != nil {
		t.Fatalf("tls/reality=%v/%v, want true/nil", vl.Transport.TLS, vl.Reality)
	}
	if vl.Transport.SNI != "v.example.com" {
		t.Fatalf("sni=%q, want=%q", vl.Transport.SNI, "v.example.com")
	}
}

func TestDecodeLine_RealityAlias(t *testing.T) {
	nodes, err := DecodeLine("reality://uuid-here@vl.example.com:443?pbk=k&sid=s&security=reality#R")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 {
		t.Fatalf("len=%d, want=1", len(nodes))
	}
	if nodes[0].Scheme() != "vless" {
		t.Fatalf("scheme=%q, want=%q", nodes[0].Scheme(), "vless")
	}
	if nodes[0].(*model.VLess).Reality == nil {
		t.Fatalf("reality opts missing after alias rewrite")
	}
}
