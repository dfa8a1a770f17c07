package atlas

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/eak1mov/go-megatex/archive"
	"github.com/eak1mov/go-megatex/codec"
)

// TexturePrefix is the location of block textures inside a resource pack.
const TexturePrefix = "assets/minecraft/textures/block/"

// Filter reports whether an archive entry name may hold a tile.
type Filter func(name string) bool

// PrefixFilter accepts names under prefix ending with ext.
func PrefixFilter(prefix, ext string) Filter {
	return func(name string) bool {
		return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ext)
	}
}

// DefaultFilter accepts PNG files under TexturePrefix.
func DefaultFilter(name string) bool {
	return strings.HasPrefix(name, TexturePrefix) && strings.HasSuffix(name, ".png")
}

// EmptyDatasetError is returned by BuildMulti when no source holds an eligible tile.
type EmptyDatasetError struct {
	Sources int
}

func (e *EmptyDatasetError) Error() string {
	return fmt.Sprintf("atlas: no eligible tiles found in %d source archive(s)", e.Sources)
}

type buildConfig struct {
	Filter   Filter
	Layout   Layout
	PackName string
	Logger   *slog.Logger
	Progress func()
}

type BuildOption func(*buildConfig)

func WithFilter(filter Filter) BuildOption {
	return func(c *buildConfig) { c.Filter = filter }
}

func WithLayout(layout Layout) BuildOption {
	return func(c *buildConfig) { c.Layout = layout }
}

func WithPackName(name string) BuildOption {
	return func(c *buildConfig) { c.PackName = name }
}

func WithLogger(logger *slog.Logger) BuildOption {
	return func(c *buildConfig) { c.Logger = logger }
}

// WithProgress registers a callback invoked once per scanned archive entry.
func WithProgress(progress func()) BuildOption {
	return func(c *buildConfig) { c.Progress = progress }
}

func newBuildConfig(opts []BuildOption) buildConfig {
	config := buildConfig{
		Filter:   DefaultFilter,
		Layout:   LayoutRowMajor,
		Logger:   slog.New(slog.DiscardHandler),
		Progress: func() {},
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Filter == nil {
		config.Filter = DefaultFilter
	}
	return config
}

// ScanEligible returns, in archive order, the names of file entries that pass
// filter and hold a valid tile. Entries that fail the tile contract or are not
// decodable images are skipped; archive read failures abort the scan.
func ScanEligible(src archive.Source, filter Filter, opts ...BuildOption) ([]string, error) {
	config := newBuildConfig(opts)
	if filter == nil {
		filter = config.Filter
	}
	return scan(src, filter, config)
}

func scan(src archive.Source, filter Filter, config buildConfig) ([]string, error) {
	names := make([]string, 0)
	seen := make(map[string]struct{})
	var rejected, undecodable int

	err := archive.VisitEntries(src, func(_ int, entry archive.Entry) error {
		config.Progress()
		if !entry.IsFile || !filter(entry.Name) {
			return nil
		}
		if _, exists := seen[entry.Name]; exists {
			return nil
		}
		seen[entry.Name] = struct{}{}

		data, err := archive.ReadFile(src, entry.Name)
		if err != nil {
			return fmt.Errorf("atlas: scan %q: %w", entry.Name, err)
		}

		ok, err := codec.ProbeBytes(data)
		if err != nil {
			undecodable++
			config.Logger.Warn("skipping undecodable entry", "name", entry.Name, "error", err)
			return nil
		}
		if !ok {
			rejected++
			config.Logger.Debug("entry is not a tile", "name", entry.Name)
			return nil
		}

		names = append(names, entry.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	config.Logger.Info("scanned archive",
		"entries", src.Len(), "eligible", len(names), "rejected", rejected, "undecodable", undecodable)
	return names, nil
}

// Build creates an atlas from the eligible tiles of a single archive.
// An archive without eligible tiles yields an empty atlas.
func Build(src archive.Source, opts ...BuildOption) (*Atlas, error) {
	config := newBuildConfig(opts)

	names, err := scan(src, config.Filter, config)
	if err != nil {
		return nil, err
	}

	atlas, err := assign(names, config.Layout)
	if err != nil {
		return nil, err
	}
	atlas.PackName = config.PackName
	return atlas, nil
}

// BuildMulti creates an atlas from several archives. A name is kept only if it
// is eligible in as many archives as the most widely available name; names
// keep the order in which they were first seen.
func BuildMulti(srcs []archive.Source, opts ...BuildOption) (*Atlas, error) {
	config := newBuildConfig(opts)

	counts := make(map[string]int)
	order := make([]string, 0)
	for i, src := range srcs {
		names, err := scan(src, config.Filter, config)
		if err != nil {
			return nil, fmt.Errorf("atlas: source %d: %w", i, err)
		}
		for _, name := range names {
			if counts[name] == 0 {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	if len(order) == 0 {
		return nil, &EmptyDatasetError{Sources: len(srcs)}
	}

	best := 0
	for _, count := range counts {
		best = max(best, count)
	}

	selected := make([]string, 0, len(order))
	for _, name := range order {
		if counts[name] == best {
			selected = append(selected, name)
		}
	}

	config.Logger.Info("selected tiles",
		"sources", len(srcs), "eligible", len(order), "selected", len(selected), "frequency", best)

	atlas, err := assign(selected, config.Layout)
	if err != nil {
		return nil, err
	}
	atlas.PackName = config.PackName
	return atlas, nil
}
