package sub

import (
	"testing"

	"github.com/subweave/subweave/internal/model"
)

func TestDecodeHysteria2(t *testing.T) {
	n, err := decodeHysteria2("hysteria2://pass@hy.example.com:8443?insecure=1&obfs=salamander&obfs-password=ob#HY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hy := n.(*model.Hysteria2)
	if hy.Password != "pass" {
		t.Fatalf("password=%q, want=%q", hy.Password, "pass")
	}
	if hy.SNI != "hy.example.com" {
		t.Fatalf("sni=%q, want server fallback", hy.SNI)
	}
	if !hy.SkipCertVerify {
		t.Fatalf("skip-cert-verify=false, want true")
	}
	if hy.Obfs != "salamander" || hy.ObfsPassword != "ob" {
		t.Fatalf("obfs=%q/%q, want salamander/ob", hy.Obfs, hy.ObfsPassword)
	}

	m := hy.Map()
	if m["type"] != "hysteria2" || m["obfs"] != "salamander" {
		t.Fatalf("map=%v", m)
	}
}

func TestDecodeHysteria2_ObfsParamAlias(t *testing.T) {
	n, err := decodeHysteria2("hysteria2://p@hy.example.com:8443?obfs=salamander&obfsParam=alias#HY")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := n.(*model.Hysteria2).ObfsPassword; got != "alias" {
		t.Fatalf("obfs password=%q, want=%q", got, "alias")
	}
}

func TestDecodeHysteria2_MissingAt(t *testing.T) {
	if _, err := decodeHysteria2("hysteria2://hy.example.com:8443"); err == nil {
		t.Fatalf("link without credential decoded without error")
	}
}
