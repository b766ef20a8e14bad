package crunch

import (
	"encoding/binary"
	"hash/fnv"
)

// Bitmap is a named, optionally trimmed pixmap together with the metadata
// needed to reconstruct its original frame. Bitmaps are immutable after
// loading.
type Bitmap struct {
	// Name identifies the bitmap in descriptors: the relative directory
	// prefix (forward slashes) plus the file's base name, no extension.
	Name string

	// Data holds the trimmed pixels.
	Data *Pixmap

	// Width and Height are the trimmed dimensions, equal to Data's.
	Width  int
	Height int

	// FrameX and FrameY are the non-positive offsets of the trimmed pixels
	// within the original frame: (-minX, -minY) of the content bounding box.
	FrameX int
	FrameY int

	// FrameW and FrameH are the original, untrimmed dimensions.
	FrameW int
	FrameH int

	// Hash fingerprints the trimmed dimensions and pixel bytes.
	Hash uint64
}

// LoadBitmap loads the PNG at path into a bitmap named name.
//
// Processing order: decode, premultiply (optional), trim (optional), hash.
// A fully transparent image cannot be trimmed; it is kept whole and a
// warning is logged.
func LoadBitmap(path, name string, premultiply, trim bool) (*Bitmap, error) {
	pm, err := LoadPNG(path)
	if err != nil {
		return nil, err
	}

	if premultiply {
		pm.Premultiply()
	}

	w, h := pm.Width(), pm.Height()
	minX, minY := 0, 0
	maxX, maxY := w-1, h-1
	if trim {
		minX, minY, maxX, maxY = contentBounds(pm)
		if maxX < minX || maxY < minY {
			Logger().Warn("image is completely transparent", "path", path)
			minX, minY = 0, 0
			maxX, maxY = w-1, h-1
		}
	}

	b := &Bitmap{
		Name:   name,
		Width:  maxX - minX + 1,
		Height: maxY - minY + 1,
		FrameW: w,
		FrameH: h,
	}

	if b.Width == w && b.Height == h {
		// Nothing was trimmed away, adopt the decoded pixels directly.
		b.Data = pm
	} else {
		b.FrameX = -minX
		b.FrameY = -minY
		b.Data = NewPixmap(b.Width, b.Height)
		rowLen := b.Width * 4
		for y := minY; y <= maxY; y++ {
			si := (y*w + minX) * 4
			di := (y - minY) * rowLen
			copy(b.Data.data[di:di+rowLen], pm.data[si:si+rowLen])
		}
	}

	b.Hash = hashPixels(b.Width, b.Height, b.Data.Data())
	return b, nil
}

// contentBounds returns the tight bounding box of pixels with alpha > 0.
// An inverted box (max < min) means the image is fully transparent.
func contentBounds(pm *Pixmap) (minX, minY, maxX, maxY int) {
	w, h := pm.Width(), pm.Height()
	minX, minY = w, h
	maxX, maxY = 0, 0
	data := pm.Data()
	for y := 0; y < h; y++ {
		row := data[y*w*4 : (y+1)*w*4]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			if x < minX {
				minX = x
			}
			if y < minY {
				minY = y
			}
			if x > maxX {
				maxX = x
			}
			if y > maxY {
				maxY = y
			}
		}
	}
	return minX, minY, maxX, maxY
}

// Equals reports whether b and other hold exactly equal trimmed pixels.
// Callers must use this to confirm a hash match before treating two bitmaps
// as duplicates.
func (b *Bitmap) Equals(other *Bitmap) bool {
	return b.Data.Equals(other.Data)
}

// hashPixels fingerprints trimmed pixel content: a 64-bit FNV-1a over the
// dimensions (little-endian uint32) followed by the raw pixel bytes.
func hashPixels(w, h int, data []byte) uint64 {
	f := fnv.New64a()
	var dim [8]byte
	binary.LittleEndian.PutUint32(dim[0:4], uint32(w))
	binary.LittleEndian.PutUint32(dim[4:8], uint32(h))
	_, _ = f.Write(dim[:])
	_, _ = f.Write(data)
	return f.Sum64()
}
