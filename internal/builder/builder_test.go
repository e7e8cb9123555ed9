package builder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Saratii/texpack/internal/ktx"
	"github.com/Saratii/texpack/pkg/tile"
)

// stubCompressor records the invocation and optionally fails, so the
// pipeline can be exercised without spawning toktx.
type stubCompressor struct {
	inputs  []string
	layers  int
	output  string
	calls   int
	err     error
	statErr []error // os.Stat result per input at call time
}

func (s *stubCompressor) Compress(inputs []string, layers int, output string) error {
	s.calls++
	s.inputs = append([]string(nil), inputs...)
	s.layers = layers
	s.output = output
	for _, in := range inputs {
		_, err := os.Stat(in)
		s.statErr = append(s.statErr, err)
	}
	return s.err
}

func writeTile(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	buf := tile.NewBuffer(w, h)
	for i := 0; i < len(buf.Pix); i += 4 {
		buf.Pix[i] = byte(w)
		buf.Pix[i+1] = byte(h)
		buf.Pix[i+3] = 255
	}

	path := filepath.Join(dir, name)
	if err := tile.WritePNG(path, buf); err != nil {
		t.Fatalf("failed to write test tile %s: %v", path, err)
	}
	return path
}

func arrayConfig(t *testing.T, heights ...int) (Config, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := Config{
		Output:  filepath.Join(dir, "array.ktx2"),
		Layered: true,
	}
	for i, h := range heights {
		name := "tile_" + string(rune('a'+i)) + ".png"
		cfg.Tiles = append(cfg.Tiles, writeTile(t, dir, name, 4, h))
	}
	return cfg, dir
}

func TestBuildArrayPassesLayersInOrder(t *testing.T) {
	cfg, _ := arrayConfig(t, 4, 4, 4)
	stub := &stubCompressor{}

	if err := New(cfg, stub).Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if stub.calls != 1 {
		t.Fatalf("expected 1 compressor call, got %d", stub.calls)
	}
	if stub.layers != 3 {
		t.Errorf("expected layer count 3, got %d", stub.layers)
	}
	if len(stub.inputs) != 3 {
		t.Fatalf("expected 3 staged inputs, got %d", len(stub.inputs))
	}
	if stub.output != cfg.Output {
		t.Errorf("expected output %s, got %s", cfg.Output, stub.output)
	}

	for i, in := range stub.inputs {
		want := "layer_" + string(rune('0'+i)) + ".png"
		if filepath.Base(in) != want {
			t.Errorf("input %d: got %s, want %s", i, filepath.Base(in), want)
		}
		if stub.statErr[i] != nil {
			t.Errorf("staged file %s missing at compress time: %v", in, stub.statErr[i])
		}
	}

	// Staged layers are temporary and must be gone after the run.
	for _, in := range stub.inputs {
		if _, err := os.Stat(in); !os.IsNotExist(err) {
			t.Errorf("staged file %s still exists after build", in)
		}
	}
}

func TestBuildArrayCleansUpOnToolFailure(t *testing.T) {
	cfg, _ := arrayConfig(t, 4, 4, 4)
	stub := &stubCompressor{err: &ktx.ToolError{Tool: "toktx", ExitCode: 1}}

	err := New(cfg, stub).Build()
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var toolErr *ktx.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("expected *ktx.ToolError, got %T", err)
	}

	if len(stub.inputs) != 3 {
		t.Fatalf("expected 3 staged inputs, got %d", len(stub.inputs))
	}
	for _, in := range stub.inputs {
		if _, statErr := os.Stat(in); !os.IsNotExist(statErr) {
			t.Errorf("staged file %s leaked after tool failure", in)
		}
	}
}

func TestBuildArrayRejectsMismatchedLayerSizes(t *testing.T) {
	cfg, _ := arrayConfig(t, 4, 5)
	stub := &stubCompressor{}

	err := New(cfg, stub).Build()
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var layoutErr *tile.LayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("expected *tile.LayoutError, got %T", err)
	}
	if stub.calls != 0 {
		t.Errorf("compressor called %d times despite layout error", stub.calls)
	}
}

func TestBuildAtlasWritesIntermediatesAndCompressesAtlas(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Tiles: []string{
			writeTile(t, dir, "dirt.png", 2, 2),
			writeTile(t, dir, "grass.png", 2, 2),
		},
		Pad:       1,
		PaddedDir: filepath.Join(dir, "padded"),
		AtlasPNG:  filepath.Join(dir, "atlas.png"),
		Output:    filepath.Join(dir, "atlas.ktx2"),
	}
	stub := &stubCompressor{}

	if err := New(cfg, stub).Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// One padded intermediate per source tile.
	for i := range cfg.Tiles {
		padded := filepath.Join(cfg.PaddedDir, "tile_"+string(rune('0'+i))+".png")
		buf, err := tile.Load(padded)
		if err != nil {
			t.Fatalf("missing padded intermediate: %v", err)
		}
		if buf.Width != 4 || buf.Height != 4 {
			t.Errorf("padded tile %d is %dx%d, want 4x4", i, buf.Width, buf.Height)
		}
	}

	atlas, err := tile.Load(cfg.AtlasPNG)
	if err != nil {
		t.Fatalf("missing atlas: %v", err)
	}
	if atlas.Width != 8 || atlas.Height != 4 {
		t.Errorf("atlas is %dx%d, want 8x4", atlas.Width, atlas.Height)
	}

	if stub.calls != 1 {
		t.Fatalf("expected 1 compressor call, got %d", stub.calls)
	}
	if stub.layers != 0 {
		t.Errorf("atlas build requested %d layers, want 0", stub.layers)
	}
	if len(stub.inputs) != 1 || stub.inputs[0] != cfg.AtlasPNG {
		t.Errorf("compressor inputs %v, want [%s]", stub.inputs, cfg.AtlasPNG)
	}
}

func TestBuildAtlasKeepsIntermediatesOnToolFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Tiles:     []string{writeTile(t, dir, "dirt.png", 4, 4)},
		Pad:       1,
		PaddedDir: filepath.Join(dir, "padded"),
		AtlasPNG:  filepath.Join(dir, "atlas.png"),
		Output:    filepath.Join(dir, "atlas.ktx2"),
	}
	stub := &stubCompressor{err: &ktx.ToolError{Tool: "toktx", ExitCode: 1}}

	if err := New(cfg, stub).Build(); err == nil {
		t.Fatal("expected error, got none")
	}

	// Atlas intermediates stay on disk for diagnosis.
	if _, err := os.Stat(cfg.AtlasPNG); err != nil {
		t.Errorf("atlas intermediate missing after tool failure: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.PaddedDir, "tile_0.png")); err != nil {
		t.Errorf("padded intermediate missing after tool failure: %v", err)
	}
}

func TestBuildAtlasRejectsInvalidPadBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Tiles:     []string{writeTile(t, dir, "dirt.png", 2, 2)},
		Pad:       5,
		PaddedDir: filepath.Join(dir, "padded"),
		AtlasPNG:  filepath.Join(dir, "atlas.png"),
		Output:    filepath.Join(dir, "atlas.ktx2"),
	}
	stub := &stubCompressor{}

	err := New(cfg, stub).Build()
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var cfgErr *tile.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *tile.ConfigError, got %T", err)
	}

	if _, statErr := os.Stat(cfg.PaddedDir); !os.IsNotExist(statErr) {
		t.Error("padded dir created despite invalid padding")
	}
	if _, statErr := os.Stat(cfg.AtlasPNG); !os.IsNotExist(statErr) {
		t.Error("atlas written despite invalid padding")
	}
	if stub.calls != 0 {
		t.Errorf("compressor called %d times despite config error", stub.calls)
	}
}

func TestBuildMissingTileReturnsDecodeError(t *testing.T) {
	cfg := Config{
		Tiles:   []string{filepath.Join(t.TempDir(), "missing.png")},
		Layered: true,
	}

	err := New(cfg, &stubCompressor{}).Build()
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var decErr *tile.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("expected *tile.DecodeError, got %T", err)
	}
}

func TestBuildRequiresTiles(t *testing.T) {
	if err := New(Config{}, &stubCompressor{}).Build(); err == nil {
		t.Fatal("expected error, got none")
	}
}
