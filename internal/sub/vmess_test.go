package sub

import (
	"encoding/base64"
	"testing"

	"github.com/subweave/subweave/internal/model"
)

func vmessLink(t *testing.T, payload string) string {
	t.Helper()
	return "vmess://" + base64.StdEncoding.EncodeToString([]byte(payload))
}

func TestDecodeVMess_WSOverTLS(t *testing.T) {
	link := vmessLink(t, `{
		"v": "2",
		"ps": "WS Node",
		"add": "vm.example.com",
		"port": "443",
		"id": "B831381D-6324-4D53-AD4F-8CDA48B30811",
		"aid": "0",
		"scy": "auto",
		"net": "ws",
		"host": "cdn.example.com",
		"path": "/ws",
		"tls": "tls"
	}`)

	n, err := decodeVMess(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vm := n.(*model.VMess)
	if vm.Name != "WS Node" {
		t.Fatalf("name=%q, want=%q", vm.Name, "WS Node")
	}
	if vm.Server != "vm.example.com" || vm.Port != 443 {
		t.Fatalf("server/port=%q/%d, want vm.example.com/443", vm.Server, vm.Port)
	}
	if vm.UUID != "b831381d-6324-4d53-ad4f-8cda48b30811" {
		t.Fatalf("uuid=%q, want lowercase canonical form", vm.UUID)
	}
	if vm.Transport.Network != "ws" || !vm.Transport.TLS {
		t.Fatalf("network/tls=%q/%v, want ws/true", vm.Transport.Network, vm.Transport.TLS)
	}
	if vm.Transport.WSPath != "/ws" || vm.Transport.WSHost != "cdn.example.com" {
		t.Fatalf("ws path/host=%q/%q", vm.Transport.WSPath, vm.Transport.WSHost)
	}

	m := vm.Map()
	if m["type"] != "vmess" {
		t.Fatalf("type=%v, want vmess", m["type"])
	}
	ws, ok := m["ws-opts"].(map[string]any)
	if !ok || ws["path"] != "/ws" {
		t.Fatalf("ws-opts=%v, want path=/ws", m["ws-opts"])
	}
}

func TestDecodeVMess_NumericPortAndHTTPNet(t *testing.T) {
	link := vmessLink(t, `{"ps":"h2","add":"vm.example.com","port":8080,"id":"x","net":"http","path":"/p","host":"h.example.com"}`)
	n, err := decodeVMess(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vm := n.(*model.VMess)
	if vm.Port != 8080 {
		t.Fatalf("port=%d, want=8080", vm.Port)
	}
	// "http" is the legacy spelling of the h2 transport.
	if vm.Transport.Network != "h2" || vm.Transport.H2Path != "/p" {
		t.Fatalf("network/path=%q/%q, want h2//p", vm.Transport.Network, vm.Transport.H2Path)
	}
}

func TestDecodeVMess_FragmentOverridesPS(t *testing.T) {
	link := vmessLink(t, `{"ps":"inner","add":"vm.example.com","port":443,"id":"x"}`) + "#outer%20name"
	n, err := decodeVMess(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Common().Name != "outer name" {
		t.Fatalf("name=%q, want=%q", n.Common().Name, "outer name")
	}
}

func TestDecodeVMess_DefaultCipher(t *testing.T) {
	link := vmessLink(t, `{"ps":"n","add":"vm.example.com","port":443,"id":"x"}`)
	n, err := decodeVMess(link)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := n.Map()["cipher"]; got != "auto" {
		t.Fatalf("cipher=%v, want auto", got)
	}
}

func TestDecodeVMess_Malformed(t *testing.T) {
	if _, err := decodeVMess("vmess://!!!not-base64!!!"); err == nil {
		t.Fatalf("bad base64 decoded without error")
	}
	if _, err := decodeVMess(vmessLink(t, "not json at all")); err == nil {
		t.Fatalf("bad json decoded without error")
	}
}
