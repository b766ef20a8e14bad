package crunch

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds option defaults loaded from a TOML file. Every field is a
// pointer so that only keys present in the file override the current value;
// flags given after the config file on the command line still win.
//
// Example file:
//
//	xml = true
//	trim = true
//	unique = true
//	size = 1024
//	padding = 2
type Config struct {
	XML         *bool `toml:"xml"`
	Binary      *bool `toml:"binary"`
	JSON        *bool `toml:"json"`
	Premultiply *bool `toml:"premultiply"`
	Trim        *bool `toml:"trim"`
	Verbose     *bool `toml:"verbose"`
	Force       *bool `toml:"force"`
	Unique      *bool `toml:"unique"`
	Rotate      *bool `toml:"rotate"`
	Size        *int  `toml:"size"`
	Padding     *int  `toml:"padding"`
}

// LoadConfig reads option defaults from the TOML file at path.
func LoadConfig(path string) (Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("crunch: loading config %s: %w", path, err)
	}
	return c, nil
}

// Apply overlays the config onto o and returns the result. Unset keys leave
// the corresponding option untouched.
func (c Config) Apply(o Options) Options {
	if c.XML != nil {
		o.XML = *c.XML
	}
	if c.Binary != nil {
		o.Binary = *c.Binary
	}
	if c.JSON != nil {
		o.JSON = *c.JSON
	}
	if c.Premultiply != nil {
		o.Premultiply = *c.Premultiply
	}
	if c.Trim != nil {
		o.Trim = *c.Trim
	}
	if c.Verbose != nil {
		o.Verbose = *c.Verbose
	}
	if c.Force != nil {
		o.Force = *c.Force
	}
	if c.Unique != nil {
		o.Unique = *c.Unique
	}
	if c.Rotate != nil {
		o.Rotate = *c.Rotate
	}
	if c.Size != nil {
		o.Size = *c.Size
	}
	if c.Padding != nil {
		o.Padding = *c.Padding
	}
	return o
}
