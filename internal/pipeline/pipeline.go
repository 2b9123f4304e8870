// Package pipeline wires the stages together: read source lists, fetch each
// subscription, decode, assemble and render one Clash document per source
// file.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/subweave/subweave/internal/compiler"
	"github.com/subweave/subweave/internal/render"
	"github.com/subweave/subweave/internal/rules"
	"github.com/subweave/subweave/internal/sub"
)

// FetchFunc retrieves one subscription body.
type FetchFunc func(ctx context.Context, url string) (string, error)

type Pipeline struct {
	Fetch      FetchFunc
	Provider   rules.Provider
	MaxProxies int
	Log        *logrus.Logger
}

// ParseSources extracts subscription URLs from a source-list file: one URL per
// line, blank lines and #-comments skipped.
func ParseSources(text string) []string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// RunDir processes every *.txt under inputDir and writes <name>.yaml into
// outputDir. A source file that fails does not abort the others; the first
// error is returned after all files were attempted.
func (p *Pipeline) RunDir(ctx context.Context, inputDir, outputDir string) error {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return fmt.Errorf("read input dir: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.RunFile(ctx, filepath.Join(inputDir, name), outputDir); err != nil {
			p.log().WithError(err).WithField("source", name).Error("生成失败")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// RunFile builds one document from a single source-list file.
func (p *Pipeline) RunFile(ctx context.Context, path, outputDir string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source list: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(path), ".txt")
	doc, err := p.Build(ctx, base, ParseSources(string(raw)))
	if err != nil {
		return err
	}

	out := filepath.Join(outputDir, base+".yaml")
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Build fetches every subscription URL, decodes all lines and renders the
// assembled document. Fetch failures skip that source; decoding always
// produces a document, worst case the placeholder node.
func (p *Pipeline) Build(ctx context.Context, name string, urls []string) ([]byte, error) {
	log := p.log().WithFields(logrus.Fields{
		"run":    uuid.NewString(),
		"source": name,
	})

	var lines []string
	fetched := 0
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := p.Fetch(ctx, u)
		if err != nil {
			log.WithError(err).WithField("url", u).Warn("拉取订阅失败，跳过该源")
			continue
		}
		fetched++
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
			if line != "" {
				lines = append(lines, line)
			}
		}
	}

	nodes, stats := sub.DecodeAll(lines)
	log.WithFields(logrus.Fields{
		"urls":     len(urls),
		"fetched":  fetched,
		"lines":    stats.Lines,
		"nodes":    stats.Nodes,
		"skipped":  stats.Skipped,
		"rejected": stats.Rejected,
	}).Info("解码完成")

	groups, ruleList, err := p.Provider.Plan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rule plan: %w", err)
	}

	res := compiler.Compile(nodes, groups, ruleList, compiler.Options{MaxProxies: p.MaxProxies})
	doc, err := render.Clash(res)
	if err != nil {
		return nil, err
	}

	log.WithField("proxies", len(res.Proxies)).Info("文档已生成")
	return doc, nil
}

func (p *Pipeline) log() *logrus.Logger {
	if p.Log != nil {
		return p.Log
	}
	return logrus.StandardLogger()
}
