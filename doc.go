// Package crunch packs PNG images into texture atlases.
//
// # Overview
//
// crunch is a Pure Go texture packer. It loads a set of PNG images from
// files and directories, optionally trims their transparent borders and
// premultiplies their alpha, packs them into one or more fixed-size
// atlases using the MaxRects algorithm with the Best Short Side Fit
// heuristic, and writes the atlas PNGs together with an XML, JSON, or
// binary descriptor of every placement.
//
// # Quick Start
//
//	import "github.com/gogpu/crunch"
//
//	job := &crunch.Job{
//		Prefix:  "out/atlas",
//		Inputs:  []string{"assets/sprites"},
//		Options: crunch.DefaultOptions(),
//	}
//	if err := job.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
// The pipeline is single-threaded and deterministic:
//   - Pixmap: RGBA8 raster with blit, rotate-blit, and PNG codec
//   - Bitmap: a named, trimmed Pixmap with frame metadata and content hash
//   - MaxRects: free-rectangle bin packing (Jylänki), BSSF placement
//   - Packer: one atlas worth of placements, with content deduplication
//   - Job: cache check, load, sort, multi-atlas scheduling, serialization
//
// # Coordinate System
//
// Origin (0,0) at top-left, X increases right, Y increases down. A rotated
// placement stores the source turned 90 degrees clockwise.
//
// # Logging
//
// crunch produces no log output by default. Call [SetLogger] to observe
// progress; the crunch command does this for its -v flag.
package crunch
