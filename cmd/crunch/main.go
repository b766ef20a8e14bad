// Command crunch packs PNG images into texture atlases.
//
// Usage:
//
//	crunch <output prefix> <input1[,input2...]> [options]
//
// Example:
//
//	crunch bin/atlases/atlas assets/characters,assets/tiles -p -t -v -u -r
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/gogpu/crunch"
)

func main() {
	job, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "crunch: %v\n\n", err)
		printUsage()
		os.Exit(1)
	}

	if job.Options.Verbose {
		crunch.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if err := job.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "crunch: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage:
  crunch <OUTPUT PREFIX> <INPUT1[,INPUT2,INPUT3...]> [OPTIONS...]

Options:
  -d  --default       use default settings (-x -p -t -u)
  -x  --xml           save the atlas data as a .xml file
  -b  --binary        save the atlas data as a .bin file
  -j  --json          save the atlas data as a .json file
  -p  --premultiply   premultiply the pixels of the bitmaps by their alpha
  -t  --trim          trim excess transparency off the bitmaps
  -v  --verbose       log progress while the packer works
  -f  --force         ignore the cache hash, forcing a repack
  -u  --unique        place duplicate bitmaps only once per atlas
  -r  --rotate        allow rotating bitmaps 90 degrees clockwise
  -s# --size#         max atlas size (4096, 2048, 1024, 512, 256, 128, or 64)
  -p# --pad#          padding between images (0 to 16)
  -c# --config#       load option defaults from a TOML file
`)
}

// parseArgs turns the raw command tokens into a Job. The match order is
// significant: exact flags first, then the prefixed size/pad/config forms,
// so that "-p" alone is premultiply while "-p3" is padding.
func parseArgs(args []string) (*crunch.Job, error) {
	if len(args) < 2 {
		return nil, errors.New(`invalid input, expected: "crunch [OUTPUT PREFIX] [INPUTS] [OPTIONS...]"`)
	}

	job := &crunch.Job{
		Prefix:  args[0],
		Inputs:  strings.Split(args[1], ","),
		Args:    args,
		Options: crunch.DefaultOptions(),
	}

	for _, arg := range args[2:] {
		opts := &job.Options
		switch {
		case arg == "-d" || arg == "--default":
			opts.XML = true
			opts.Premultiply = true
			opts.Trim = true
			opts.Unique = true
		case arg == "-x" || arg == "--xml":
			opts.XML = true
		case arg == "-b" || arg == "--binary":
			opts.Binary = true
		case arg == "-j" || arg == "--json":
			opts.JSON = true
		case arg == "-p" || arg == "--premultiply":
			opts.Premultiply = true
		case arg == "-t" || arg == "--trim":
			opts.Trim = true
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
		case arg == "-f" || arg == "--force":
			opts.Force = true
		case arg == "-u" || arg == "--unique":
			opts.Unique = true
		case arg == "-r" || arg == "--rotate":
			opts.Rotate = true
		case strings.HasPrefix(arg, "--config"):
			if err := applyConfig(job, arg[len("--config"):]); err != nil {
				return nil, err
			}
		case strings.HasPrefix(arg, "-c"):
			if err := applyConfig(job, arg[len("-c"):]); err != nil {
				return nil, err
			}
		case strings.HasPrefix(arg, "--size"):
			n, err := parseSize(arg[len("--size"):])
			if err != nil {
				return nil, err
			}
			opts.Size = n
		case strings.HasPrefix(arg, "-s"):
			n, err := parseSize(arg[len("-s"):])
			if err != nil {
				return nil, err
			}
			opts.Size = n
		case strings.HasPrefix(arg, "--pad"):
			n, err := parsePadding(arg[len("--pad"):])
			if err != nil {
				return nil, err
			}
			opts.Padding = n
		case strings.HasPrefix(arg, "-p"):
			n, err := parsePadding(arg[len("-p"):])
			if err != nil {
				return nil, err
			}
			opts.Padding = n
		default:
			return nil, fmt.Errorf("unexpected argument: %s", arg)
		}
	}

	return job, nil
}

// applyConfig overlays defaults from a TOML file onto the options gathered
// so far. Flags after the config token still override it.
func applyConfig(job *crunch.Job, path string) error {
	if path == "" {
		return errors.New("missing config file path")
	}
	cfg, err := crunch.LoadConfig(path)
	if err != nil {
		return err
	}
	job.Options = cfg.Apply(job.Options)
	job.ConfigFiles = append(job.ConfigFiles, path)
	return nil
}

func parseSize(s string) (int, error) {
	switch s {
	case "4096":
		return 4096, nil
	case "2048":
		return 2048, nil
	case "1024":
		return 1024, nil
	case "512":
		return 512, nil
	case "256":
		return 256, nil
	case "128":
		return 128, nil
	case "64":
		return 64, nil
	}
	return 0, fmt.Errorf("invalid size: %s", s)
}

func parsePadding(s string) (int, error) {
	for i := 0; i <= 16; i++ {
		if s == strconv.Itoa(i) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid padding value: %s", s)
}
