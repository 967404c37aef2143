package clean

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lakshaymaurya-felt/wintrack/internal/config"
	"github.com/lakshaymaurya-felt/wintrack/internal/core"
)

// Provider is one cleanup category. ListCandidateFiles returns the files
// a clean of this category would delete; it never deletes anything.
type Provider interface {
	Name() string
	Description() string
	ListCandidateFiles(ctx context.Context) ([]string, error)
}

// Sizer is implemented by providers that can report their total size
// without listing every file.
type Sizer interface {
	TotalSize() (int64, error)
}

// Emptier is implemented by providers that need an OS call after their
// files are deleted, such as the Recycle Bin.
type Emptier interface {
	Empty(ctx context.Context) error
}

// Registry holds providers in registration order.
type Registry struct {
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Provider)}
}

// Register adds a provider. Names are unique, compared case-insensitively.
func (r *Registry) Register(p Provider) error {
	key := strings.ToLower(p.Name())
	if key == "" {
		return fmt.Errorf("provider has no name")
	}
	if _, dup := r.byName[key]; dup {
		return fmt.Errorf("provider %q already registered", p.Name())
	}
	r.byName[key] = p
	r.providers = append(r.providers, p)
	return nil
}

// Get looks a provider up by name, ignoring case.
func (r *Registry) Get(name string) (Provider, bool) {
	p, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Providers returns all providers in registration order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// DefaultRegistry registers the built-in categories for this machine.
// Browser caches are only offered when their directories exist.
func DefaultRegistry(logger zerolog.Logger) *Registry {
	reg := NewRegistry()
	add := func(p Provider) {
		if err := reg.Register(p); err != nil {
			logger.Warn().Err(err).Msg("skipping cleanup provider")
		}
	}

	add(newRecycleBin(logger))

	for _, t := range config.GetCleanTargets() {
		if t.Name == config.TargetDeliveryOpt && !core.HasDeliveryOptimization() {
			continue
		}
		add(newTargetProvider(t, logger))
		// Downloads follows Defender in the category list.
		if t.Name == config.TargetDefender {
			add(newTargetProvider(downloadsTarget(), logger))
		}
	}

	for _, t := range config.GetBrowserTargets() {
		p := newTargetProvider(t, logger)
		if !p.detected() {
			logger.Debug().Str("provider", t.Name).Msg("browser cache not found")
			continue
		}
		add(p)
	}

	for _, p := range platformProviders(logger) {
		add(p)
	}
	return reg
}

func downloadsTarget() config.CleanTarget {
	return config.CleanTarget{
		Name:        config.TargetDownloads,
		Description: "Files in the Downloads folder (top level only)",
		Rules:       []config.PathRule{{Dir: downloadsDir()}},
		Category:    "user",
	}
}
