// Package builder orchestrates the texture pipeline: it performs the file
// and process side effects around the pure image core in pkg/tile.
package builder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Saratii/texpack/pkg/tile"
)

// Config is the full, immutable description of one pipeline run.
type Config struct {
	// Tiles is the ordered list of source tile paths. In array mode the
	// order becomes the layer order.
	Tiles []string
	// Pad is the edge-extrusion width in pixels (atlas mode only).
	Pad int
	// PaddedDir receives the intermediate padded tile images.
	PaddedDir string
	// AtlasPNG is the intermediate atlas image path.
	AtlasPNG string
	// Output is the final KTX2 container path.
	Output string
	// Layered selects a texture array instead of a combined atlas.
	Layered bool
}

// Compressor produces the final container from staged image files.
// *ktx.Invoker satisfies it; tests substitute stubs so the pipeline can
// be exercised without spawning processes.
type Compressor interface {
	Compress(inputs []string, layers int, output string) error
}

// Builder runs the atlas or array pipeline for one configuration. Any
// error aborts the whole run; there is no partial success and no retry.
type Builder struct {
	cfg        Config
	compressor Compressor
}

// New returns a Builder for the given configuration and compressor.
func New(cfg Config, c Compressor) *Builder {
	return &Builder{cfg: cfg, compressor: c}
}

// Build runs the configured pipeline to completion.
func (b *Builder) Build() error {
	if len(b.cfg.Tiles) == 0 {
		return fmt.Errorf("no source tiles configured")
	}

	if b.cfg.Layered {
		return b.buildArray()
	}
	return b.buildAtlas()
}

func (b *Builder) loadTiles() ([]*tile.Buffer, error) {
	tiles := make([]*tile.Buffer, 0, len(b.cfg.Tiles))
	for _, path := range b.cfg.Tiles {
		fmt.Fprintf(os.Stderr, "Loading: %s\n", path)
		buf, err := tile.Load(path)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, buf)
	}
	return tiles, nil
}

// buildAtlas pads every tile, persists the padded intermediates and the
// combined atlas, then hands the atlas to the compressor. Intermediate
// images are left in place when the tool fails so the run can be
// diagnosed.
func (b *Builder) buildAtlas() error {
	tiles, err := b.loadTiles()
	if err != nil {
		return err
	}

	// Pad everything up front so an invalid padding width aborts before
	// any output file is written.
	padded := make([]*tile.Buffer, len(tiles))
	for i, t := range tiles {
		p, err := tile.Pad(t, b.cfg.Pad)
		if err != nil {
			return err
		}
		padded[i] = p
	}

	if err := os.MkdirAll(b.cfg.PaddedDir, 0o755); err != nil {
		return fmt.Errorf("can't create %s: %w", b.cfg.PaddedDir, err)
	}
	for i, p := range padded {
		out := filepath.Join(b.cfg.PaddedDir, fmt.Sprintf("tile_%d.png", i))
		if err := tile.WritePNG(out, p); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Created %d padded tiles.\n", len(padded))

	atlas, err := tile.Assemble(padded)
	if err != nil {
		return err
	}
	if err := tile.WritePNG(b.cfg.AtlasPNG, atlas); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Atlas saved: %s (%dx%d)\n", b.cfg.AtlasPNG, atlas.Width, atlas.Height)

	if err := b.compressor.Compress([]string{b.cfg.AtlasPNG}, 0, b.cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved: %s\n", b.cfg.Output)

	return nil
}

// buildArray stages each tile as a temporary layer file and hands the
// ordered list to the compressor. Layers are not padded: a texture array
// cannot bleed between layers. Staged files never outlive the run, even
// when the tool fails.
func (b *Builder) buildArray() error {
	tiles, err := b.loadTiles()
	if err != nil {
		return err
	}

	if err := tile.SameSize(tiles); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "texpack-layers-")
	if err != nil {
		return fmt.Errorf("can't create staging directory: %w", err)
	}
	defer os.RemoveAll(dir)

	staged := make([]string, len(tiles))
	for i, t := range tiles {
		staged[i] = filepath.Join(dir, fmt.Sprintf("layer_%d.png", i))
		if err := tile.WritePNG(staged[i], t); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "Staged %d layers.\n", len(staged))

	if err := b.compressor.Compress(staged, len(staged), b.cfg.Output); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Saved: %s\n", b.cfg.Output)

	return nil
}
