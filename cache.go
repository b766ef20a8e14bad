package crunch

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// The build cache decides whether a run can be skipped: a 64-bit FNV-1a
// accumulator over the command tokens and every input file's bytes is
// compared against the sidecar <out>/<name>.hash written by the previous
// successful run.

// hashBuild folds the argument tokens, the inputs (file bytes, or every
// file under a directory in listing order), and any extra files into one
// accumulator. An input containing a dot is a file; otherwise a directory.
func hashBuild(args, inputs, extraFiles []string) (uint64, error) {
	f := fnv.New64a()
	for _, arg := range args {
		hashToken(f, []byte(arg))
	}
	for _, input := range inputs {
		if isFileInput(input) {
			if err := hashFile(f, input); err != nil {
				return 0, err
			}
		} else if err := hashDir(f, input); err != nil {
			return 0, err
		}
	}
	for _, path := range extraFiles {
		if err := hashFile(f, path); err != nil {
			return 0, err
		}
	}
	return f.Sum64(), nil
}

// isFileInput mirrors the input classification rule: a path with a dot
// anywhere in it names a PNG file, a path without one names a directory.
func isFileInput(path string) bool {
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			return true
		}
	}
	return false
}

// hashToken writes a length-prefixed token so that adjacent tokens cannot
// run together.
func hashToken(f hash.Hash64, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	_, _ = f.Write(n[:])
	_, _ = f.Write(b)
}

func hashFile(f hash.Hash64, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("crunch: hashing %s: %w", path, err)
	}
	hashToken(f, b)
	return nil
}

// hashDir recurses into root in directory-listing order, folding in the
// bytes of every regular file.
func hashDir(f hash.Hash64, root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("crunch: hashing %s: %w", root, err)
	}
	for _, e := range entries {
		path := filepath.Join(root, e.Name())
		if e.IsDir() {
			if err := hashDir(f, path); err != nil {
				return err
			}
			continue
		}
		if err := hashFile(f, path); err != nil {
			return err
		}
	}
	return nil
}

// loadHash reads the sidecar written by a previous run. A missing or
// malformed sidecar simply means there is no cache to hit.
func loadHash(path string) (uint64, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer func() {
		_ = f.Close()
	}()

	var raw [8]byte
	if _, err := io.ReadFull(f, raw[:]); err != nil {
		return 0, false
	}
	return binary.LittleEndian.Uint64(raw[:]), true
}

// saveHash writes the accumulator as 8 little-endian bytes.
func saveHash(path string, h uint64) error {
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], h)
	if err := os.WriteFile(path, raw[:], 0o644); err != nil {
		return fmt.Errorf("crunch: saving hash: %w", err)
	}
	return nil
}

// removeOutputs deletes the outputs a previous run may have left behind:
// the hash sidecar, every descriptor, and the first sixteen atlas pages.
func removeOutputs(outDir, name string) {
	remove := func(file string) {
		_ = os.Remove(filepath.Join(outDir, file))
	}
	remove(name + ".hash")
	remove(name + ".bin")
	remove(name + ".xml")
	remove(name + ".json")
	for i := 0; i < 16; i++ {
		remove(name + strconv.Itoa(i) + ".png")
	}
}
