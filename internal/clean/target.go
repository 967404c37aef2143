package clean

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
)

// targetProvider lists files described by a config.CleanTarget.
type targetProvider struct {
	target config.CleanTarget
	logger zerolog.Logger
	now    func() time.Time
}

func newTargetProvider(t config.CleanTarget, logger zerolog.Logger) *targetProvider {
	return &targetProvider{target: t, logger: logger, now: time.Now}
}

// NewTargetProvider exposes a rule-driven provider for custom targets.
func NewTargetProvider(t config.CleanTarget, logger zerolog.Logger) Provider {
	return newTargetProvider(t, logger)
}

func (p *targetProvider) Name() string        { return p.target.Name }
func (p *targetProvider) Description() string { return p.target.Description }

// detected reports whether any of the target's directories exist.
func (p *targetProvider) detected() bool {
	for _, rule := range p.target.Rules {
		if len(resolveDirs(rule.Dir)) > 0 {
			return true
		}
	}
	return false
}

func (p *targetProvider) ListCandidateFiles(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		files = append(files, path)
	}

	now := p.now()
	for _, rule := range p.target.Rules {
		for _, dir := range resolveDirs(rule.Dir) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := p.listRule(ctx, rule, dir, now, add); err != nil {
				return nil, err
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

func (p *targetProvider) listRule(ctx context.Context, rule config.PathRule, dir string, now time.Time, add func(string)) error {
	if !rule.Recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			p.logger.Debug().Err(err).Str("dir", dir).Msg("cannot list cleanup directory")
			return nil
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if matchRule(rule, entry, now) {
				add(filepath.Join(dir, entry.Name()))
			}
		}
		return nil
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			p.logger.Debug().Err(err).Str("path", path).Msg("skipping unreadable entry")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if rule.SkipDir != "" && path != dir && hasPathSuffix(path, rule.SkipDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if matchRule(rule, d, now) {
			add(path)
		}
		return nil
	})
}

// resolveDirs expands glob metacharacters in dir and keeps existing
// directories only.
func resolveDirs(dir string) []string {
	if dir == "" || dir == "." {
		return nil
	}
	candidates := []string{dir}
	if strings.ContainsAny(dir, "*?[") {
		matches, err := filepath.Glob(dir)
		if err != nil {
			return nil
		}
		candidates = matches
	}

	var dirs []string
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.IsDir() {
			dirs = append(dirs, c)
		}
	}
	return dirs
}

func matchRule(rule config.PathRule, d fs.DirEntry, now time.Time) bool {
	name := strings.ToLower(d.Name())

	if rule.NamePrefix != "" && !strings.HasPrefix(name, strings.ToLower(rule.NamePrefix)) {
		return false
	}

	if len(rule.Extensions) > 0 || len(rule.NameContains) > 0 {
		matched := false
		for _, ext := range rule.Extensions {
			if strings.HasSuffix(name, ext) {
				matched = true
				break
			}
		}
		for _, part := range rule.NameContains {
			if matched {
				break
			}
			matched = strings.Contains(name, part)
		}
		if !matched {
			return false
		}
	}

	if rule.MinAge > 0 {
		info, err := d.Info()
		if err != nil || now.Sub(info.ModTime()) < rule.MinAge {
			return false
		}
	}
	return true
}

func hasPathSuffix(path, suffix string) bool {
	path = strings.ToLower(filepath.Clean(path))
	suffix = strings.ToLower(filepath.Clean(suffix))
	if path == suffix {
		return true
	}
	return strings.HasSuffix(path, string(filepath.Separator)+suffix)
}
