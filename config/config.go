// Package config holds the command-line and optional YAML configuration for
// the eagle binary.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full set of tunables accepted on the command line, with an
// optional YAML file supplying defaults that explicit flags override.
type Config struct {
	VCFPath   string
	BAMPath   string
	FastaPath string
	BEDPath   string
	OutPath   string

	NumProc int
	DistLim int
	MaxH    int

	MVH bool
	PAO bool

	HetBias float64
	Omega   float64

	Verbose bool

	// ChainMode, Window, and the local-realignment knobs below are parsed
	// for command-line compatibility but are neither validated nor consumed
	// by any evaluation step; see doc.go.
	ChainMode int
	Window    int
	ISC       bool
	NoDup     bool
	Splice    bool
	DP        bool
	Match     int
	Mismatch  int
	GapOpen   int
	GapExtend int
}

// Defaults returns a Config populated with the documented command-line
// defaults.
func Defaults() Config {
	return Config{
		NumProc:   1,
		DistLim:   10,
		MaxH:      1024,
		HetBias:   0.5,
		Omega:     1e-4,
		Match:     1,
		Mismatch:  4,
		GapOpen:   6,
		GapExtend: 1,
	}
}

// fileConfig mirrors Config for YAML decoding, using pointers so that a
// field's absence from the file can be told apart from the field being
// explicitly set to its Go zero value (e.g. "distlim: 0" to disable
// grouping, matching spec §4.2's documented meaning of that value).
type fileConfig struct {
	VCFPath   *string `yaml:"vcf"`
	BAMPath   *string `yaml:"bam"`
	FastaPath *string `yaml:"fasta"`
	BEDPath   *string `yaml:"bed"`
	OutPath   *string `yaml:"out"`

	NumProc *int `yaml:"numproc"`
	DistLim *int `yaml:"distlim"`
	MaxH    *int `yaml:"maxh"`

	MVH *bool `yaml:"mvh"`
	PAO *bool `yaml:"pao"`

	HetBias *float64 `yaml:"hetbias"`
	Omega   *float64 `yaml:"omega"`

	Verbose *bool `yaml:"verbose"`

	ChainMode *int  `yaml:"chain_mode"`
	Window    *int  `yaml:"window"`
	ISC       *bool `yaml:"isc"`
	NoDup     *bool `yaml:"nodup"`
	Splice    *bool `yaml:"splice"`
	DP        *bool `yaml:"dp"`
	Match     *int  `yaml:"match"`
	Mismatch  *int  `yaml:"mismatch"`
	GapOpen   *int  `yaml:"gap_op"`
	GapExtend *int  `yaml:"gap_ex"`
}

// LoadYAML reads a YAML file at path and overlays the fields it actually
// sets onto base, returning the merged Config. A field the file omits
// leaves base's value untouched regardless of what that value is; callers
// should apply LoadYAML before parsing flags, then overwrite with any flags
// the user actually set.
func LoadYAML(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errors.Wrapf(err, "config: failed to read %q", path)
	}
	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return base, errors.Wrapf(err, "config: failed to parse %q", path)
	}
	merge(&base, file)
	return base, nil
}

func merge(dst *Config, src fileConfig) {
	if src.VCFPath != nil {
		dst.VCFPath = *src.VCFPath
	}
	if src.BAMPath != nil {
		dst.BAMPath = *src.BAMPath
	}
	if src.FastaPath != nil {
		dst.FastaPath = *src.FastaPath
	}
	if src.BEDPath != nil {
		dst.BEDPath = *src.BEDPath
	}
	if src.OutPath != nil {
		dst.OutPath = *src.OutPath
	}
	if src.NumProc != nil {
		dst.NumProc = *src.NumProc
	}
	if src.DistLim != nil {
		dst.DistLim = *src.DistLim
	}
	if src.MaxH != nil {
		dst.MaxH = *src.MaxH
	}
	if src.HetBias != nil {
		dst.HetBias = *src.HetBias
	}
	if src.Omega != nil {
		dst.Omega = *src.Omega
	}
	if src.MVH != nil {
		dst.MVH = *src.MVH
	}
	if src.PAO != nil {
		dst.PAO = *src.PAO
	}
	if src.Verbose != nil {
		dst.Verbose = *src.Verbose
	}
	if src.ChainMode != nil {
		dst.ChainMode = *src.ChainMode
	}
	if src.Window != nil {
		dst.Window = *src.Window
	}
	if src.ISC != nil {
		dst.ISC = *src.ISC
	}
	if src.NoDup != nil {
		dst.NoDup = *src.NoDup
	}
	if src.Splice != nil {
		dst.Splice = *src.Splice
	}
	if src.DP != nil {
		dst.DP = *src.DP
	}
	if src.Match != nil {
		dst.Match = *src.Match
	}
	if src.Mismatch != nil {
		dst.Mismatch = *src.Mismatch
	}
	if src.GapOpen != nil {
		dst.GapOpen = *src.GapOpen
	}
	if src.GapExtend != nil {
		dst.GapExtend = *src.GapExtend
	}
}
