package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/logicossoftware/go-docxedit"
)

const (
	DefaultListen       = ":5000"
	DefaultScratchDir   = "uploads"
	DefaultDownloadName = "edited.docx"
	DefaultUploadSize   = 32 << 20
)

// Global is the configuration shared by every docxedit command.
type Global struct {
	LogLevel  string `toml:"log_level" yaml:"log_level"`
	LogFile   string `toml:"log_file" yaml:"log_file"`
	LogFormat string `toml:"log_format" yaml:"log_format"`

	Server   Server   `toml:"server" yaml:"server"`
	Envelope Envelope `toml:"envelope" yaml:"envelope"`
	Limits   Limits   `toml:"limits" yaml:"limits"`
}

type Server struct {
	Listen        string `toml:"listen" yaml:"listen"`
	ScratchDir    string `toml:"scratch_dir" yaml:"scratch_dir"`
	MaxUploadSize int64  `toml:"max_upload_size" yaml:"max_upload_size"`
	DownloadName  string `toml:"download_name" yaml:"download_name"`
}

type Envelope struct {
	Compression string `toml:"compression" yaml:"compression"`
}

// Limits mirrors docxedit.Limits. Zero fields keep the library defaults.
type Limits struct {
	MaxPackageSize          uint64 `toml:"max_package_size" yaml:"max_package_size"`
	MaxPartSize             uint64 `toml:"max_part_size" yaml:"max_part_size"`
	MaxEnvelopeSize         uint64 `toml:"max_envelope_size" yaml:"max_envelope_size"`
	MaxEnvelopeUncompressed uint64 `toml:"max_envelope_uncompressed" yaml:"max_envelope_uncompressed"`
	MaxBlocks               int    `toml:"max_blocks" yaml:"max_blocks"`
	MaxRunsPerParagraph     int    `toml:"max_runs_per_paragraph" yaml:"max_runs_per_paragraph"`
	MaxCellsPerTable        int    `toml:"max_cells_per_table" yaml:"max_cells_per_table"`
}

func (l Limits) Docxedit() docxedit.Limits {
	return docxedit.Limits{
		MaxPackageSize:          l.MaxPackageSize,
		MaxPartSize:             l.MaxPartSize,
		MaxEnvelopeSize:         l.MaxEnvelopeSize,
		MaxEnvelopeUncompressed: l.MaxEnvelopeUncompressed,
		MaxBlocks:               l.MaxBlocks,
		MaxRunsPerParagraph:     l.MaxRunsPerParagraph,
		MaxCellsPerTable:        l.MaxCellsPerTable,
	}
}

// Default returns a configuration with every default applied.
func Default() Global {
	var cfg Global
	cfg.defaults()

	return cfg
}

func (c *Global) defaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = DefaultListen
	}
	if c.Server.ScratchDir == "" {
		c.Server.ScratchDir = DefaultScratchDir
	}
	if c.Server.MaxUploadSize <= 0 {
		c.Server.MaxUploadSize = DefaultUploadSize
	}
	if c.Server.DownloadName == "" {
		c.Server.DownloadName = DefaultDownloadName
	}
	if c.Envelope.Compression == "" {
		c.Envelope.Compression = docxedit.CompZSTD.String()
	}
}

// Validate checks values that cannot be defaulted.
func (c Global) Validate() error {
	if _, err := docxedit.ParseCompression(c.Envelope.Compression); err != nil {
		return fmt.Errorf("envelope compression: %w", err)
	}
	if strings.ContainsAny(c.Server.DownloadName, `/\`) {
		return fmt.Errorf("download name %q must not contain a path separator", c.Server.DownloadName)
	}

	return nil
}

// LoadFromFile reads a TOML or YAML configuration, chosen by file extension,
// and applies defaults to every field left unset.
func LoadFromFile(fs afero.Fs, file string) (Global, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		return Global{}, fmt.Errorf("couldn't read configuration file %q: %w", file, err)
	}

	var cfg Global

	switch ext := strings.ToLower(filepath.Ext(file)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
		if err != nil {
			return Global{}, fmt.Errorf("couldn't parse TOML content of the configuration file: %w", err)
		}
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
		if err != nil {
			return Global{}, fmt.Errorf("couldn't parse YAML content of the configuration file: %w", err)
		}
	default:
		return Global{}, fmt.Errorf("unsupported configuration file extension %q", ext)
	}

	cfg.defaults()

	return cfg, cfg.Validate()
}
