// Package megatex composes atlas squares into a single megatexture and cuts a
// megatexture back into an archive of tiles.
package megatex

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/cespare/xxhash"
	"github.com/eak1mov/go-megatex/archive"
	"github.com/eak1mov/go-megatex/atlas"
	"github.com/eak1mov/go-megatex/codec"
	"github.com/eak1mov/go-megatex/tile"
)

// DefaultMaxFailRate is the largest share of squares that may come from the
// backup archive.
const DefaultMaxFailRate = 0.05

// Result is a compiled megatexture.
type Result struct {
	Image *tile.Image

	// Fallbacks lists, in atlas order, the squares taken from the backup archive.
	Fallbacks []string

	Digest uint64
}

type compileConfig struct {
	MaxFailRate float64
	Logger      *slog.Logger
	Progress    func()
}

type Option func(*compileConfig)

func WithMaxFailRate(rate float64) Option {
	return func(c *compileConfig) { c.MaxFailRate = rate }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *compileConfig) { c.Logger = logger }
}

// WithProgress registers a callback invoked once per processed square or entry.
func WithProgress(progress func()) Option {
	return func(c *compileConfig) { c.Progress = progress }
}

func newConfig(opts []Option) compileConfig {
	config := compileConfig{
		MaxFailRate: DefaultMaxFailRate,
		Logger:      slog.New(slog.DiscardHandler),
		Progress:    func() {},
	}
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// LoadSquare reads and decodes the tile named by square from src.
func LoadSquare(src archive.Source, square atlas.Square) (*tile.Image, error) {
	data, err := archive.ReadFile(src, square.Name)
	if err != nil {
		return nil, err
	}
	img, err := codec.DecodeBytes(data)
	if err != nil {
		return nil, err
	}
	if width, height := img.Dimensions(); width != tile.Edge || height != tile.Edge {
		return nil, fmt.Errorf("%w: %q is %dx%d, want %dx%d",
			ErrDimensionMismatch, square.Name, width, height, tile.Edge, tile.Edge)
	}
	return img, nil
}

// Compile draws every square of a onto a new canvas of tile.Edge*SideLength
// pixels per side.
//
// A square that cannot be loaded from primary is loaded from backup instead.
// If backup is nil or is primary itself, there is no second chance and any
// failure is returned. Otherwise the compilation fails with a
// *BackupLoadError when both archives fail for a square, and with an
// *ExcessiveFallbackError when the share of backup squares exceeds the
// configured rate.
func Compile(a *atlas.Atlas, primary, backup archive.Source, opts ...Option) (*Result, error) {
	config := newConfig(opts)

	if err := a.Validate(); err != nil {
		return nil, err
	}

	single := backup == nil || sameSource(primary, backup)
	side := tile.Edge * int(a.SideLength)
	canvas := tile.New(side, side)
	fallbacks := make([]string, 0)

	for _, square := range a.Squares {
		img, err := LoadSquare(primary, square)
		if err != nil && single {
			return nil, fmt.Errorf("megatex: load %q: %w", square.Name, err)
		}
		if err != nil {
			config.Logger.Warn("falling back to backup archive", "name", square.Name, "error", err)
			fallbacks = append(fallbacks, square.Name)

			var backupErr error
			img, backupErr = LoadSquare(backup, square)
			if backupErr != nil {
				return nil, &BackupLoadError{Name: square.Name, Primary: err, Backup: backupErr}
			}
		}

		config.Logger.Debug("placing square", "name", square.Name, "x", square.X, "y", square.Y)
		canvas.Blit(int(square.X)*tile.Edge, int(square.Y)*tile.Edge, img)
		config.Progress()
	}

	rate := 0.0
	if len(a.Squares) > 0 {
		rate = float64(len(fallbacks)) / float64(len(a.Squares))
	}
	if rate > config.MaxFailRate {
		return nil, &ExcessiveFallbackError{
			Failures: fallbacks,
			Total:    len(a.Squares),
			Rate:     rate,
			Limit:    config.MaxFailRate,
		}
	}

	result := &Result{Image: canvas, Fallbacks: fallbacks, Digest: Digest(canvas)}
	config.Logger.Info("compiled megatexture",
		"squares", len(a.Squares), "side", side, "fallbacks", len(fallbacks), "digest", fmt.Sprintf("%016x", result.Digest))
	return result, nil
}

// Digest returns the xxhash of the raw pixels of img.
func Digest(img *tile.Image) uint64 {
	return xxhash.Sum64(img.Pix())
}

func sameSource(a, b archive.Source) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
