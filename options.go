package crunch

import "strconv"

// Options holds the packing configuration for a run. It replaces mutable
// process-wide state: build one value, validate it, and pass it along.
type Options struct {
	// XML, Binary, JSON select which descriptor files are written.
	XML    bool
	Binary bool
	JSON   bool

	// Premultiply scales each bitmap's color channels by its alpha.
	Premultiply bool

	// Trim removes transparent borders from each bitmap, recording the
	// offset of the kept pixels within the original frame.
	Trim bool

	// Verbose is recorded for the option dump; log output itself is
	// controlled by SetLogger.
	Verbose bool

	// Force ignores the build-cache hash and always repacks.
	Force bool

	// Unique places identical pixel content only once per atlas.
	Unique bool

	// Rotate allows placing bitmaps rotated 90 degrees clockwise.
	Rotate bool

	// Size is the maximum atlas width and height.
	// Must be one of 64, 128, 256, 512, 1024, 2048, 4096.
	Size int

	// Padding is the gutter reserved to the right of and below each
	// placement, in pixels. Must be in [0, 16].
	Padding int
}

// DefaultOptions returns the default configuration: no descriptors, no
// trimming, 4096 atlases with one pixel of padding.
func DefaultOptions() Options {
	return Options{
		Size:    4096,
		Padding: 1,
	}
}

// validSizes are the accepted atlas sizes, largest first.
var validSizes = []int{4096, 2048, 1024, 512, 256, 128, 64}

// Validate checks that the option values are within their allowed ranges.
func (o Options) Validate() error {
	ok := false
	for _, s := range validSizes {
		if o.Size == s {
			ok = true
			break
		}
	}
	if !ok {
		return &OptionError{Field: "Size", Reason: "must be one of 64, 128, 256, 512, 1024, 2048, 4096, got " + strconv.Itoa(o.Size)}
	}
	if o.Padding < 0 || o.Padding > 16 {
		return &OptionError{Field: "Padding", Reason: "must be in [0, 16], got " + strconv.Itoa(o.Padding)}
	}
	return nil
}
