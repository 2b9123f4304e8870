package sub

import (
	"runtime"
	"strings"
	"sync"

	"github.com/subweave/subweave/internal/codec"
	"github.com/subweave/subweave/internal/model"
)

// DecodeFunc decodes one raw share link of a single scheme.
type DecodeFunc func(raw string) (model.Node, error)

// registry maps a scheme tag to its decoder. Adding a scheme means adding an
// entry here, not editing a branch chain.
var registry = map[string]DecodeFunc{
	"ss":        decodeSS,
	"ssr":       decodeSSR,
	"vmess":     decodeVMess,
	"trojan":    decodeTrojan,
	"vless":     decodeVLess,
	"hysteria2": decodeHysteria2,
	"tuic":      decodeTUIC,
	"juicity":   decodeJuicity,
	"wireguard": decodeWireGuard,
}

// aliases are rewritten to their canonical scheme before dispatch.
// reality:// links are vless links with security=reality semantics.
var aliases = map[string]string{
	"wg":      "wireguard",
	"reality": "vless",
}

// Bare-base64 bundles may themselves contain bundles; recursion is capped so
// pathological inputs cannot nest forever.
const maxBundleDepth = 2

// DecodeLine decodes one input line.
//
// A line is either a single share link, or a bare base64 blob wrapping further
// links (one per line), or noise. Lines with unrecognized schemes (socks5://,
// http://, ...) and undecodable noise yield an empty result without an error:
// skipping them is policy, not failure. Malformed links of a supported scheme
// yield a *DecodeError.
func DecodeLine(line string) ([]model.Node, error) {
	return decodeLine(line, 0)
}

func decodeLine(line string, depth int) ([]model.Node, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}

	if scheme, rest, ok := cutScheme(line); ok {
		if canonical, ok := aliases[scheme]; ok {
			scheme = canonical
			line = canonical + "://" + rest
		}
		decode, ok := registry[scheme]
		if !ok {
			return nil, nil
		}
		n, err := decode(line)
		if err != nil {
			return nil, err
		}
		return []model.Node{n}, nil
	}

	// No scheme prefix: the line may be a base64 bundle of further links.
	if depth >= maxBundleDepth || !codec.Plausible(line) {
		return nil, nil
	}
	decoded, err := codec.DecodeString(line)
	if err != nil {
		return nil, nil
	}
	var out []model.Node
	for _, sub := range strings.Split(decoded, "\n") {
		sub = strings.TrimSpace(strings.TrimSuffix(sub, "\r"))
		if sub == "" || strings.HasPrefix(sub, "#") || !strings.Contains(sub, "://") {
			continue
		}
		nodes, err := decodeLine(sub, depth+1)
		if err != nil {
			continue // keep the successes, drop the bad sub-line
		}
		out = append(out, nodes...)
	}
	return out, nil
}

func cutScheme(line string) (scheme, rest string, ok bool) {
	idx := strings.Index(line, "://")
	if idx <= 0 {
		return "", "", false
	}
	scheme = strings.ToLower(line[:idx])
	for _, r := range scheme {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return "", "", false
		}
	}
	return scheme, line[idx+len("://"):], true
}

// Stats counts the outcome of a batch decode.
type Stats struct {
	Lines    int
	Nodes    int
	Skipped  int // unrecognized scheme / noise
	Rejected int // malformed links of a supported scheme
}

// DecodeAll decodes a batch of lines concurrently. Per-line decoding shares no
// state, so lines are fanned out to workers; results are re-imposed in input
// order before dedup and naming run, keeping the pipeline deterministic.
func DecodeAll(lines []string) ([]model.Node, Stats) {
	type result struct {
		nodes []model.Node
		err   error
	}

	results := make([]result, len(lines))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(lines) {
		workers = len(lines)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	next := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				nodes, err := DecodeLine(lines[i])
				results[i] = result{nodes: nodes, err: err}
			}
		}()
	}
	for i := range lines {
		next <- i
	}
	close(next)
	wg.Wait()

	stats := Stats{Lines: len(lines)}
	var out []model.Node
	for _, r := range results {
		switch {
		case r.err != nil:
			stats.Rejected++
		case len(r.nodes) == 0:
			stats.Skipped++
		default:
			out = append(out, r.nodes...)
			stats.Nodes += len(r.nodes)
		}
	}
	return out, stats
}
