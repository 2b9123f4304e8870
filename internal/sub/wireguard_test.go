package sub

import (
	"testing"

	"github.com/subweave/subweave/internal/model"
)

func TestDecodeWireGuard(t *testing.T) {
	n, err := decodeWireGuard("wireguard://PRIVKEY@wg.example.com:51821?public_key=PUB&address=10.0.0.2/32,fd00::2/128&dns=1.1.1.1,8.8.8.8&mtu=1380#WG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wg := n.(*model.WireGuard)
	if wg.PrivateKey != "PRIVKEY" || wg.PublicKey != "PUB" {
		t.Fatalf("keys=%q/%q, want PRIVKEY/PUB", wg.PrivateKey, wg.PublicKey)
	}
	if wg.Port != 51821 {
		t.Fatalf("port=%d, want=51821", wg.Port)
	}
	if len(wg.Addresses) != 2 || wg.Addresses[0] != "10.0.0.2/32" {
		t.Fatalf("addresses=%v", wg.Addresses)
	}
	if wg.MTU != 1380 {
		t.Fatalf("mtu=%d, want=1380", wg.MTU)
	}

	m := wg.Map()
	if m["ip"] != "10.0.0.2/32" || m["ipv6"] != "fd00::2/128" {
		t.Fatalf("ip/ipv6=%v/%v", m["ip"], m["ipv6"])
	}
}

func TestDecodeWireGuard_DefaultPort(t *testing.T) {
	n, err := decodeWireGuard("wireguard://wg.example.com?private_key=PK&public_key=PUB#W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wg := n.(*model.WireGuard)
	if wg.Port != defaultWireGuardPort {
		t.Fatalf("port=%d, want protocol default %d", wg.Port, defaultWireGuardPort)
	}
	if wg.PrivateKey != "PK" {
		t.Fatalf("private key=%q, want query value", wg.PrivateKey)
	}
}

func TestDecodeLine_WGAlias(t *testing.T) {
	nodes, err := DecodeLine("wg://PK@wg.example.com:51820#W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nodes) != 1 || nodes[0].Scheme() != "wireguard" {
		t.Fatalf("nodes=%v, want one wireguard node", nodes)
	}
}
