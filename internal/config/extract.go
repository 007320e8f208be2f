package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ExtractConfig holds configuration for the extract command.
type ExtractConfig struct {
	In        string
	Out       string
	PGDSN     string
	Pool      string
	Slot      string
	Workers   int
	ChunkSize int
	LogLevel  string
}

// LoadExtract merges config file, environment variables, and flags into ExtractConfig.
func LoadExtract(cfgFile string, flags *pflag.FlagSet) (ExtractConfig, error) {
	v := viper.New()
	v.SetDefault("slot", DefaultSlot)
	v.SetDefault("out", "./data/price_changes.jsonl")
	v.SetDefault("workers", 4)
	v.SetDefault("chunk-size", 256)
	v.SetDefault("log-level", "info")

	if err := readInto(v, cfgFile, flags); err != nil {
		return ExtractConfig{}, err
	}

	cfg := ExtractConfig{
		In:        v.GetString("in"),
		Out:       v.GetString("out"),
		PGDSN:     v.GetString("pg-dsn"),
		Pool:      strings.TrimSpace(v.GetString("pool")),
		Slot:      strings.TrimSpace(v.GetString("slot")),
		Workers:   v.GetInt("workers"),
		ChunkSize: v.GetInt("chunk-size"),
		LogLevel:  v.GetString("log-level"),
	}

	return cfg, nil
}
