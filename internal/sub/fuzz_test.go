package sub

import "testing"

func FuzzDecodeLine(f *testing.F) {
	seed := []string{
		"",
		"   \n",
		"ss://YWVzLTI1Ni1nY206cGFzc3dvcmQ=@example.com:8443#MyNode",
		"ss://aes-128-gcm:pass@example.com:8388",
		"ss://YWVzLTEyOC1nY206cGFzcw==@[::1]:8388#ipv6",
		"vmess://eyJwcyI6Im4iLCJhZGQiOiJ2bS5leGFtcGxlLmNvbSIsInBvcnQiOjQ0MywiaWQiOiJ4In0=",
		"trojan://pw@tr.example.com:443?sni=x.example.com#t",
		"vless://uuid@vl.example.com:443?security=reality&pbk=k&sid=s",
		"hysteria2://p@hy.example.com:8443?insecure=1",
		"tuic://u:p@t.example.com:443",
		"juicity://u:p@j.example.com:443",
		"wg://PK@wg.example.com:51820",
		"reality://uuid@vl.example.com:443?security=reality&pbk=k",
		"socks5://ignored.example.com:1080",
		"c3M6Ly9ZV1Z6TFRJMU5pMW5ZMjA9cGFkcGFkcGFk",
	}
	for _, s := range seed {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, line string) {
		nodes, err := DecodeLine(line)
		if err != nil {
			if len(nodes) != 0 {
				t.Fatalf("nodes returned alongside error")
			}
			return
		}
		for _, n := range nodes {
			ep := n.Common()
			if ep.Name == "" {
				t.Fatalf("decoded node has empty name")
			}
			if n.Scheme() == "" {
				t.Fatalf("decoded node has empty scheme")
			}
			m := n.Map()
			if m["server"] != ep.Server || m["name"] != ep.Name {
				t.Fatalf("map does not reflect endpoint: %v vs %+v", m, ep)
			}
		}
	})
}
