package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Config keys.
const (
	KeyRoot          = "track.root"
	KeyStateDir      = "track.state_dir"
	KeyThreshold     = "track.threshold"
	KeyExcludedRoots = "track.excluded_roots"
	KeyTop           = "track.top"
	KeyWorkers       = "track.workers"
	KeyCatalog       = "track.catalog"
	KeyCleanLogDir   = "clean.log_dir"
)

// EnvPrefix namespaces environment overrides (WT_TRACK_ROOT, ...).
const EnvPrefix = "WT"

// Settings are the resolved values the commands hand to constructors.
type Settings struct {
	Root          string
	StateDir      string
	Threshold     int64
	ExcludedRoots []string
	Top           int
	Workers       int
	Catalog       bool
	CleanLogDir   string
}

// CatalogPath is the SQLite file beside the snapshots.
func (s Settings) CatalogPath() string {
	return filepath.Join(s.StateDir, "catalog.db")
}

// ScanExclusions is ExcludedRoots plus the directories wintrack writes to,
// so a scan never records its own snapshots, catalog, or cleanup logs.
func (s Settings) ScanExclusions() []string {
	roots := append([]string(nil), s.ExcludedRoots...)
	for _, dir := range []string{s.StateDir, s.CleanLogDir} {
		if dir == "" {
			continue
		}
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		roots = append(roots, dir)
	}
	return roots
}

// SetDefaults registers every key's default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyRoot, SystemDrive())
	v.SetDefault(KeyStateDir, StateDir())
	v.SetDefault(KeyThreshold, "10MiB")
	v.SetDefault(KeyExcludedRoots, DefaultExcludedRoots())
	v.SetDefault(KeyTop, 20)
	v.SetDefault(KeyWorkers, 8)
	v.SetDefault(KeyCatalog, true)
	v.SetDefault(KeyCleanLogDir, "")
}

// NewViper returns a viper instance with defaults, env binding and the
// config file search path set. cfgFile overrides the search path.
func NewViper(cfgFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, AppName))
		}
		v.SetConfigType("toml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ReadInConfig loads the config file if there is one. A missing file in
// the default search path is not an error.
func ReadInConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load resolves Settings from v. Paths are expanded and cleaned.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Root:     cleanPath(v.GetString(KeyRoot)),
		StateDir: cleanPath(v.GetString(KeyStateDir)),
		Top:      v.GetInt(KeyTop),
		Workers:  v.GetInt(KeyWorkers),
		Catalog:  v.GetBool(KeyCatalog),
	}

	threshold, err := ParseThreshold(v.GetString(KeyThreshold))
	if err != nil {
		return Settings{}, err
	}
	s.Threshold = threshold

	for _, r := range v.GetStringSlice(KeyExcludedRoots) {
		if r = cleanPath(r); r != "" {
			s.ExcludedRoots = append(s.ExcludedRoots, r)
		}
	}

	if s.StateDir == "" {
		return Settings{}, fmt.Errorf("%s must not be empty", KeyStateDir)
	}
	if s.Top < 0 {
		return Settings{}, fmt.Errorf("%s must not be negative, got %d", KeyTop, s.Top)
	}
	if s.Workers <= 0 {
		s.Workers = 8
	}

	s.CleanLogDir = cleanPath(v.GetString(KeyCleanLogDir))
	if s.CleanLogDir == "" {
		s.CleanLogDir = s.StateDir
	}
	return s, nil
}

// ParseThreshold accepts a byte count with an optional unit ("10MiB",
// "10 MB", "10485760").
func ParseThreshold(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%s must not be empty", KeyThreshold)
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", KeyThreshold, raw, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%s %q is too large", KeyThreshold, raw)
	}
	return int64(n), nil
}

func cleanPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.Clean(Expand(p))
}
