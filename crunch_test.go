package crunch

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestJobRunSingleBitmap(t *testing.T) {
	dir := t.TempDir()
	red := savePixmap(t, fillPixmap(16, 16, 255, 0, 0, 255), dir, "red.png")

	opts := DefaultOptions()
	opts.Size = 64
	job := &Job{
		Prefix:  filepath.Join(dir, "atlas"),
		Inputs:  []string{red},
		Args:    []string{filepath.Join(dir, "atlas"), red, "-s64"},
		Options: opts,
	}
	if err := job.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The 64x64 atlas shrinks to the 16x16 content.
	atlas, err := LoadPNG(filepath.Join(dir, "atlas0.png"))
	if err != nil {
		t.Fatalf("loading atlas: %v", err)
	}
	if atlas.Width() != 16 || atlas.Height() != 16 {
		t.Errorf("atlas is %dx%d, want 16x16", atlas.Width(), atlas.Height())
	}
	if got := pixelAt(atlas, 0, 0); got != [4]uint8{255, 0, 0, 255} {
		t.Errorf("atlas pixel (0,0) = %v, want red", got)
	}

	// No descriptor flags, no descriptor files; the hash sidecar exists.
	for _, ext := range []string{".xml", ".json", ".bin"} {
		if _, err := os.Stat(filepath.Join(dir, "atlas"+ext)); !os.IsNotExist(err) {
			t.Errorf("descriptor atlas%s written without its flag", ext)
		}
	}
	if _, ok := loadHash(filepath.Join(dir, "atlas.hash")); !ok {
		t.Error("hash sidecar missing after a successful run")
	}
}

func TestJobRunDeduplicatesInDescriptor(t *testing.T) {
	dir := t.TempDir()
	a := savePixmap(t, fillPixmap(8, 8, 0, 128, 0, 255), dir, "A.png")
	b := savePixmap(t, fillPixmap(8, 8, 0, 128, 0, 255), dir, "B.png")

	opts := DefaultOptions()
	opts.Size = 64
	opts.Unique = true
	opts.JSON = true
	job := &Job{
		Prefix:  filepath.Join(dir, "atlas"),
		Inputs:  []string{a, b},
		Args:    []string{filepath.Join(dir, "atlas"), a + "," + b, "-u", "-j", "-s64"},
		Options: opts,
	}
	if err := job.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "atlas.json"))
	if err != nil {
		t.Fatalf("reading descriptor: %v", err)
	}
	var doc struct {
		Textures []struct {
			Images []struct {
				Name string `json:"n"`
				X    int    `json:"x"`
				Y    int    `json:"y"`
			} `json:"images"`
		} `json:"textures"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("descriptor is not valid JSON: %v", err)
	}
	if len(doc.Textures) != 1 || len(doc.Textures[0].Images) != 2 {
		t.Fatalf("descriptor shape %+v, want one texture with two images", doc)
	}
	for _, img := range doc.Textures[0].Images {
		if img.X != 0 || img.Y != 0 {
			t.Errorf("image %q at (%d,%d), want the shared placement (0,0)", img.Name, img.X, img.Y)
		}
	}

	// Only one drawing in the atlas, which therefore shrinks to 8x8.
	atlas, err := LoadPNG(filepath.Join(dir, "atlas0.png"))
	if err != nil {
		t.Fatalf("loading atlas: %v", err)
	}
	if atlas.Width() != 8 || atlas.Height() != 8 {
		t.Errorf("atlas is %dx%d, want 8x8", atlas.Width(), atlas.Height())
	}
}

func TestJobRunCacheHit(t *testing.T) {
	dir := t.TempDir()
	red := savePixmap(t, fillPixmap(4, 4, 255, 0, 0, 255), dir, "red.png")

	opts := DefaultOptions()
	opts.Size = 64
	job := &Job{
		Prefix:  filepath.Join(dir, "atlas"),
		Inputs:  []string{red},
		Args:    []string{filepath.Join(dir, "atlas"), red},
		Options: opts,
	}
	if err := job.Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// Remove the atlas; a cache hit must not regenerate it.
	atlasPath := filepath.Join(dir, "atlas0.png")
	if err := os.Remove(atlasPath); err != nil {
		t.Fatal(err)
	}
	if err := job.Run(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if _, err := os.Stat(atlasPath); !os.IsNotExist(err) {
		t.Error("cache hit regenerated outputs")
	}

	// Force repacks even with an unchanged hash.
	forced := *job
	forced.Options.Force = true
	if err := forced.Run(); err != nil {
		t.Fatalf("forced run: %v", err)
	}
	if _, err := os.Stat(atlasPath); err != nil {
		t.Errorf("forced run did not regenerate the atlas: %v", err)
	}

	// A changed input invalidates the cache.
	savePixmap(t, fillPixmap(4, 4, 0, 0, 255, 255), dir, "red.png")
	if err := job.Run(); err != nil {
		t.Fatalf("run after input change: %v", err)
	}
	atlas, err := LoadPNG(atlasPath)
	if err != nil {
		t.Fatal(err)
	}
	if got := pixelAt(atlas, 0, 0); got != [4]uint8{0, 0, 255, 255} {
		t.Errorf("atlas pixel = %v, want repacked blue content", got)
	}
}

func TestJobRunOversized(t *testing.T) {
	dir := t.TempDir()
	wide := savePixmap(t, fillPixmap(70, 10, 1, 2, 3, 255), dir, "wide.png")

	opts := DefaultOptions()
	opts.Size = 64
	opts.Rotate = true
	job := &Job{
		Prefix:  filepath.Join(dir, "atlas"),
		Inputs:  []string{wide},
		Args:    []string{filepath.Join(dir, "atlas"), wide, "-r", "-s64"},
		Options: opts,
	}

	err := job.Run()
	var oversized *OversizedError
	if !errors.As(err, &oversized) {
		t.Fatalf("Run error = %v, want OversizedError", err)
	}
	if oversized.Name != "wide" {
		t.Errorf("error names %q, want %q", oversized.Name, "wide")
	}
}

func TestJobRunSpansMultipleAtlases(t *testing.T) {
	dir := t.TempDir()
	var inputs []string
	// Five 40x40 bitmaps with padding 1 need 41x41 cells: a 64x64 atlas
	// holds one each.
	names := []string{"a", "b", "c", "d", "e"}
	for i, n := range names {
		inputs = append(inputs, savePixmap(t, fillPixmap(40, 40, uint8(i+1), 0, 0, 255), dir, n+".png"))
	}

	opts := DefaultOptions()
	opts.Size = 64
	opts.Binary = true
	job := &Job{
		Prefix:  filepath.Join(dir, "atlas"),
		Inputs:  inputs,
		Args:    append([]string{filepath.Join(dir, "atlas")}, inputs...),
		Options: opts,
	}
	if err := job.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i := range names {
		if _, err := os.Stat(filepath.Join(dir, "atlas"+string(rune('0'+i))+".png")); err != nil {
			t.Errorf("atlas page %d missing: %v", i, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "atlas.bin")); err != nil {
		t.Errorf("binary descriptor missing: %v", err)
	}
}

func TestJobRunFailureWritesNoHash(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.png")
	writeFile(t, bad, []byte("not a png"))

	opts := DefaultOptions()
	job := &Job{
		Prefix:  filepath.Join(dir, "atlas"),
		Inputs:  []string{bad},
		Args:    []string{filepath.Join(dir, "atlas"), bad},
		Options: opts,
	}
	if err := job.Run(); err == nil {
		t.Fatal("Run succeeded on a corrupt input")
	}
	if _, ok := loadHash(filepath.Join(dir, "atlas.hash")); ok {
		t.Error("hash sidecar written after a failed run")
	}
}

func TestJobRunInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 1000
	job := &Job{Prefix: "atlas", Inputs: []string{"x.png"}, Options: opts}

	err := job.Run()
	var optErr *OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("Run error = %v, want OptionError", err)
	}
}

func TestLoadInputsDirectoryNaming(t *testing.T) {
	dir := t.TempDir()
	savePixmap(t, fillPixmap(2, 2, 1, 0, 0, 255), dir, "hero.png")
	sub := filepath.Join(dir, "tiles")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	savePixmap(t, fillPixmap(2, 2, 2, 0, 0, 255), sub, "grass.png")
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))

	bitmaps, err := loadInputs([]string{dir}, DefaultOptions())
	if err != nil {
		t.Fatalf("loadInputs: %v", err)
	}

	names := map[string]bool{}
	for _, b := range bitmaps {
		names[b.Name] = true
	}
	if len(bitmaps) != 2 || !names["hero"] || !names["tiles/grass"] {
		t.Errorf("loaded names %v, want hero and tiles/grass", names)
	}
}

func TestSplitPrefix(t *testing.T) {
	tests := []struct {
		prefix   string
		wantDir  string
		wantName string
	}{
		{"bin/atlases/atlas", "bin/atlases/", "atlas"},
		{"atlas", "", "atlas"},
		{"out/atlas.tex", "out/", "atlas"},
		{"a.b/atlas", "a.b/", "atlas"},
		{"out/", "out/", ""},
	}
	for _, tt := range tests {
		dir, name := splitPrefix(tt.prefix)
		if dir != tt.wantDir || name != tt.wantName {
			t.Errorf("splitPrefix(%q) = (%q, %q), want (%q, %q)",
				tt.prefix, dir, name, tt.wantDir, tt.wantName)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"sprites/hero.png", "hero"},
		{"hero.png", "hero"},
		{"sprites/hero", "hero"},
	}
	for _, tt := range tests {
		if got := fileName(tt.path); got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
