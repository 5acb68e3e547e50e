package server

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/sprite-tools-mcp/internal/chromakey"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel  = "SPRITE_MCP_LOG_LEVEL"
	EnvWorkers   = "SPRITE_MCP_WORKERS"
	EnvTolerance = "SPRITE_MCP_TOLERANCE"
	EnvEdgeSize  = "SPRITE_MCP_EDGE_SIZE"
	EnvPadding   = "SPRITE_MCP_PADDING"
	EnvNoCrop    = "SPRITE_MCP_NO_CROP"
)

// Config holds server-wide defaults. Tool arguments override them per call.
type Config struct {
	// Debug enables per-request and per-job log lines on stderr.
	Debug bool

	// Workers is the batch pool size. Zero selects runtime.NumCPU().
	Workers int

	// Defaults are the background removal settings used when a tool call
	// leaves a setting out.
	Defaults chromakey.Options
}

// DefaultConfig returns the configuration used when no environment is set.
func DefaultConfig() Config {
	return Config{Defaults: chromakey.DefaultOptions()}
}

// ConfigFromEnv reads the SPRITE_MCP_* variables. Invalid values are logged
// and replaced by their defaults.
func ConfigFromEnv() Config {
	return configFromLookup(os.Getenv)
}

func configFromLookup(getenv func(string) string) Config {
	cfg := DefaultConfig()

	cfg.Debug = strings.EqualFold(strings.TrimSpace(getenv(EnvLogLevel)), "debug")

	if v := getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("Ignoring %s=%q: want a non-negative integer", EnvWorkers, v)
		} else {
			cfg.Workers = n
		}
	}

	if v := getenv(EnvTolerance); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > chromakey.MaxTolerance {
			log.Printf("Ignoring %s=%q: want a number in [0, %.1f]", EnvTolerance, v, chromakey.MaxTolerance)
		} else {
			cfg.Defaults.Tolerance = f
		}
	}

	if v := getenv(EnvEdgeSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Printf("Ignoring %s=%q: want a positive integer", EnvEdgeSize, v)
		} else {
			cfg.Defaults.EdgeSize = n
		}
	}

	if v := getenv(EnvPadding); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			log.Printf("Ignoring %s=%q: want a non-negative integer", EnvPadding, v)
		} else {
			cfg.Defaults.Padding = n
		}
	}

	if v := getenv(EnvNoCrop); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("Ignoring %s=%q: want true or false", EnvNoCrop, v)
		} else {
			cfg.Defaults.AutoCrop = !b
		}
	}

	return cfg
}
