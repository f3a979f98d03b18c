package typing

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/carbocation/pfx"
	"gopkg.in/yaml.v3"

	"github.com/carbocation/serovar"
	"github.com/carbocation/serovar/antigen"
	"github.com/carbocation/serovar/exttools"
	"github.com/carbocation/serovar/mlst2serovar"
)

// Config holds everything needed to type samples: classification thresholds,
// the location of the serovar table and the external programs.
type Config struct {
	DB           string  `yaml:"db"`
	MinSeroCount int     `yaml:"min_sero_count"`
	MinFraction  float64 `yaml:"min_fraction"`
	MaskLowCount int     `yaml:"mask_low_count"`

	SeqType string `yaml:"seq_type"` // paired, single or assembled
	Method  string `yaml:"method"`   // seqsero or seqsero2

	TmpDir   string `yaml:"tmp_dir"`
	Parallel int    `yaml:"parallel"`

	// Python2Env is a file of shell commands run before SeqSero.
	Python2Env string `yaml:"python2_env"`

	Tools ToolPaths `yaml:"tools"`
}

type ToolPaths struct {
	CGEMLST     string `yaml:"cgemlst"`
	CGEMLSTDB   string `yaml:"cgemlst_db"`
	Python2     string `yaml:"python2"`
	Python3     string `yaml:"python3"`
	SeqSero     string `yaml:"seqsero"`
	SeqSero2    string `yaml:"seqsero2"`
	Blastn      string `yaml:"blastn"`
	Makeblastdb string `yaml:"makeblastdb"`
	Samtools    string `yaml:"samtools"`
	Bwa         string `yaml:"bwa"`
}

// DefaultConfig expects every external program to be on PATH.
func DefaultConfig() Config {
	opts := mlst2serovar.DefaultOptions()

	return Config{
		MinSeroCount: opts.MinSeroCount,
		MinFraction:  opts.MinFraction,
		MaskLowCount: opts.MaskLowCount,
		SeqType:      exttools.Paired.String(),
		Method:       antigen.SeqSero.String(),
		Parallel:     1,
		Tools: ToolPaths{
			CGEMLST:     "mlst.py",
			Python2:     "python2.7",
			Python3:     "python3",
			SeqSero:     "SeqSero.py",
			SeqSero2:    "SeqSero2_package.py",
			Blastn:      "blastn",
			Makeblastdb: "makeblastdb",
			Samtools:    "samtools",
			Bwa:         "bwa",
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig. Unknown keys
// are rejected so that typos do not silently fall back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(serovar.ExpandHome(path))
	if err != nil {
		return cfg, pfx.Err(fmt.Errorf("failed to read config: %w", err))
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, pfx.Err(fmt.Errorf("failed to parse config %s: %w", path, err))
	}

	return cfg, nil
}

func (c Config) Options() mlst2serovar.Options {
	return mlst2serovar.Options{
		MinSeroCount: c.MinSeroCount,
		MinFraction:  c.MinFraction,
		MaskLowCount: c.MaskLowCount,
	}
}

func (c Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return err
	}
	if c.MinFraction < 0 || c.MinFraction > 1 {
		return fmt.Errorf("min fraction must be between 0 and 1, got %v", c.MinFraction)
	}
	if _, err := exttools.ParseSeqType(c.SeqType); err != nil {
		return err
	}
	if _, err := antigen.ParseDialect(c.Method); err != nil {
		return err
	}
	if c.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", c.Parallel)
	}

	return nil
}
