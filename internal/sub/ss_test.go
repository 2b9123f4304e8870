package sub

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/subweave/subweave/internal/model"
)

func TestDecodeSS_Base64Userinfo(t *testing.T) {
	n, err := decodeSS("ss://YWVzLTI1Ni1nY206cGFzc3dvcmQ=@example.com:8443#MyNode")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := n.(*model.SS)
	if ss.Cipher != "aes-256-gcm" || ss.Password != "password" {
		t.Fatalf("cipher/password=%q/%q, want aes-256-gcm/password", ss.Cipher, ss.Password)
	}
	if ss.Server != "example.com" || ss.Port != 8443 {
		t.Fatalf("server/port=%q/%d, want example.com/8443", ss.Server, ss.Port)
	}
	if ss.Name != "MyNode" {
		t.Fatalf("name=%q, want=%q", ss.Name, "MyNode")
	}
}

func TestDecodeSS_PlainUserinfo(t *testing.T) {
	n, err := decodeSS("ss://aes-128-gcm:pa%3Ass@example.com:8388#plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := n.(*model.SS)
	if ss.Cipher != "aes-128-gcm" || ss.Password != "pa:ss" {
		t.Fatalf("cipher/password=%q/%q, want aes-128-gcm/pa:ss", ss.Cipher, ss.Password)
	}
}

func TestDecodeSS_WholePayloadBase64(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte("aes-128-gcm:pass@ex.com:443"))
	n, err := decodeSS("ss://" + b64 + "#old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := n.(*model.SS)
	if ss.Cipher != "aes-128-gcm" || ss.Password != "pass" {
		t.Fatalf("cipher/password=%q/%q, want aes-128-gcm/pass", ss.Cipher, ss.Password)
	}
	if ss.Server != "ex.com" || ss.Port != 443 {
		t.Fatalf("server/port=%q/%d, want ex.com/443", ss.Server, ss.Port)
	}
}

func TestDecodeSS_FlatLegacy(t *testing.T) {
	n, err := decodeSS("ss://example.com:8388:AES-128-GCM:passwd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := n.(*model.SS)
	if ss.Cipher != "aes-128-gcm" || ss.Password != "passwd" {
		t.Fatalf("cipher/password=%q/%q, want aes-128-gcm/passwd", ss.Cipher, ss.Password)
	}
}

func TestDecodeSS_Plugin(t *testing.T) {
	n, err := decodeSS("ss://YWVzLTEyOC1nY206cGFzcw==@example.com:8388/?plugin=simple-obfs%3Bobfs%3Dtls%3Bobfs-host%3Dexample.com#obfs")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ss := n.(*model.SS)
	if ss.PluginName != "obfs" {
		t.Fatalf("plugin=%q, want=%q", ss.PluginName, "obfs")
	}
	if len(ss.PluginOpts) != 2 {
		t.Fatalf("opts len=%d, want=2", len(ss.PluginOpts))
	}
	if ss.PluginOpts[0] != (model.KV{Key: "mode", Value: "tls"}) {
		t.Fatalf("opt0=%+v, want mode=tls", ss.PluginOpts[0])
	}
	if ss.PluginOpts[1] != (model.KV{Key: "host", Value: "example.com"}) {
		t.Fatalf("opt1=%+v, want host=example.com", ss.PluginOpts[1])
	}
}

func TestDecodeSS_IPv6(t *testing.T) {
	n, err := decodeSS("ss://YWVzLTEyOC1nY206cGFzcw==@[::1]:8388#v6")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Common().Server != "::1" {
		t.Fatalf("server=%q, want=%q", n.Common().Server, "::1")
	}
}

func TestDecodeSS_FallbackName(t *testing.T) {
	n, err := decodeSS("ss://YWVzLTEyOC1nY206cGFzcw==@example.com:8388")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := n.Common().Name; got != "SS-example.com:8388" {
		t.Fatalf("name=%q, want deterministic fallback", got)
	}
}

func TestDecodeSS_Malformed(t *testing.T) {
	cases := []string{
		"ss://",
		"ss://garbage",
		"ss://YWVzLTEyOC1nY206cGFzcw==@example.com:0",
		"ss://YWVzLTEyOC1nY206cGFzcw==@example.com:99999",
		"ss://YWVzLTEyOC1nY206cGFzcw==@:8388",
	}
	for _, raw := range cases {
		_, err := decodeSS(raw)
		if err == nil {
			t.Fatalf("decodeSS(%q) succeeded, want error", raw)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Fatalf("decodeSS(%q) err=%T, want *DecodeError", raw, err)
		}
	}
}
