package crunch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Job describes one packing run.
type Job struct {
	// Prefix is the output path prefix <dir>/<name>: atlases are written
	// as <dir>/<name><i>.png and descriptors as <dir>/<name>.<ext>.
	Prefix string

	// Inputs are the PNG files and directories to pack. An entry with a
	// dot anywhere in it is a file, otherwise a directory searched
	// recursively.
	Inputs []string

	// Args are the raw command tokens. They seed the build-cache hash so
	// that changing any flag invalidates the cache.
	Args []string

	// ConfigFiles lists defaults files whose bytes also seed the cache
	// hash, so that editing one triggers a repack.
	ConfigFiles []string

	Options Options
}

// Run executes the full pipeline: build-cache check, stale-output sweep,
// load, sort, multi-atlas packing, and serialization. On success the new
// cache hash is persisted; on failure previously swept outputs stay gone.
func (j *Job) Run() error {
	opts := j.Options
	if err := opts.Validate(); err != nil {
		return err
	}
	log := Logger()
	log.Debug("arguments", "args", j.Args)

	outDir, name := splitPrefix(j.Prefix)

	newHash, err := hashBuild(j.Args, j.Inputs, j.ConfigFiles)
	if err != nil {
		return err
	}

	hashPath := filepath.Join(outDir, name+".hash")
	if old, found := loadHash(hashPath); found && !opts.Force && old == newHash {
		log.Info("atlas is unchanged", "name", name)
		return nil
	}

	log.Info("options",
		"xml", opts.XML, "binary", opts.Binary, "json", opts.JSON,
		"premultiply", opts.Premultiply, "trim", opts.Trim,
		"verbose", opts.Verbose, "force", opts.Force,
		"unique", opts.Unique, "rotate", opts.Rotate,
		"size", opts.Size, "pad", opts.Padding)

	removeOutputs(outDir, name)

	log.Info("loading images")
	bitmaps, err := loadInputs(j.Inputs, opts)
	if err != nil {
		return err
	}

	// Consumed from the tail, so ascending area packs largest first.
	// Stable sort keeps load order for equal areas, for deterministic
	// output.
	sort.SliceStable(bitmaps, func(a, b int) bool {
		return bitmaps[a].Width*bitmaps[a].Height < bitmaps[b].Width*bitmaps[b].Height
	})

	var packers []*Packer
	for len(bitmaps) > 0 {
		log.Info("packing images", "count", len(bitmaps))
		p := NewPacker(opts.Size, opts.Size, opts.Padding)
		p.Pack(&bitmaps, opts)
		if len(p.Bitmaps) == 0 {
			b := bitmaps[len(bitmaps)-1]
			return &OversizedError{Name: b.Name, Width: b.Width, Height: b.Height}
		}
		packers = append(packers, p)
		log.Info("finished atlas",
			"name", name+strconv.Itoa(len(packers)-1),
			"width", p.Width, "height", p.Height)
	}

	for i, p := range packers {
		path := filepath.Join(outDir, name+strconv.Itoa(i)+".png")
		log.Info("writing png", "path", path)
		if err := p.SavePNG(path); err != nil {
			return err
		}
	}

	if opts.Binary {
		err := writeDescriptorFile(filepath.Join(outDir, name+".bin"), func(w io.Writer) error {
			return writeBin(w, name, packers, opts)
		})
		if err != nil {
			return err
		}
	}
	if opts.XML {
		err := writeDescriptorFile(filepath.Join(outDir, name+".xml"), func(w io.Writer) error {
			return writeXML(w, name, packers, opts)
		})
		if err != nil {
			return err
		}
	}
	if opts.JSON {
		err := writeDescriptorFile(filepath.Join(outDir, name+".json"), func(w io.Writer) error {
			return writeJSON(w, name, packers, opts)
		})
		if err != nil {
			return err
		}
	}

	return saveHash(hashPath, newHash)
}

// writeDescriptorFile creates path, runs write against it, and removes the
// file again if anything fails.
func writeDescriptorFile(path string, write func(io.Writer) error) error {
	Logger().Info("writing descriptor", "path", path)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("crunch: writing %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("crunch: writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("crunch: writing %s: %w", path, err)
	}
	return nil
}

// loadInputs loads every input in order: files directly, directories
// recursively with os.ReadDir's sorted listing, so runs are deterministic.
func loadInputs(inputs []string, opts Options) ([]*Bitmap, error) {
	var bitmaps []*Bitmap
	for _, input := range inputs {
		if isFileInput(input) {
			Logger().Debug("loading image", "path", input)
			b, err := LoadBitmap(input, fileName(input), opts.Premultiply, opts.Trim)
			if err != nil {
				return nil, err
			}
			bitmaps = append(bitmaps, b)
			continue
		}
		if err := loadDir(input, "", opts, &bitmaps); err != nil {
			return nil, err
		}
	}
	return bitmaps, nil
}

func loadDir(root, prefix string, opts Options, out *[]*Bitmap) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("crunch: reading directory %s: %w", root, err)
	}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if e.IsDir() {
			if err := loadDir(path, prefix+e.Name()+"/", opts, out); err != nil {
				return err
			}
			continue
		}
		if !strings.HasSuffix(e.Name(), ".png") {
			continue
		}
		Logger().Debug("loading image", "path", path)
		b, err := LoadBitmap(path, prefix+fileName(path), opts.Premultiply, opts.Trim)
		if err != nil {
			return err
		}
		*out = append(*out, b)
	}
	return nil
}

// splitPrefix splits an output prefix into its directory (with trailing
// slash, or empty) and name (no extension). Separators are normalized to
// forward slashes first.
func splitPrefix(prefix string) (dir, name string) {
	s := filepath.ToSlash(prefix)
	si := strings.LastIndex(s, "/") + 1
	di := strings.LastIndex(s, ".")
	dir = s[:si]
	if di >= si {
		return dir, s[si:di]
	}
	return dir, s[si:]
}

// fileName returns the base name of path without its extension.
func fileName(path string) string {
	s := filepath.ToSlash(path)
	si := strings.LastIndex(s, "/") + 1
	di := strings.LastIndex(s, ".")
	if di >= si {
		return s[si:di]
	}
	return s[si:]
}
