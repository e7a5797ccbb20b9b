package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/binder/internal/coordinator"
	"github.com/JaimeStill/binder/internal/drive"
	"github.com/JaimeStill/binder/internal/merger"
	"github.com/JaimeStill/binder/pkg/formatting"
)

const (
	EnvMergeBatchSize        = "BINDER_MERGE_BATCH_SIZE"
	EnvMergeBatchMaxBytes    = "BINDER_MERGE_BATCH_MAX_BYTES"
	EnvMergeFetchConcurrency = "BINDER_MERGE_FETCH_CONCURRENCY"
	EnvMergeCollision        = "BINDER_MERGE_COLLISION"
	EnvMergeHeaderRows       = "BINDER_MERGE_HEADER_ROWS"
	EnvMergeDestinationName  = "BINDER_MERGE_DEFAULT_DESTINATION_NAME"
	EnvMergeRecursive        = "BINDER_MERGE_RECURSIVE"
)

// MergeConfig holds merge execution and roster defaults.
// BatchMaxBytes accepts human sizes such as "64MB"; "0" disables the byte
// bound. HeaderRows and Recursive are pointers so an explicit 0 or false
// survives defaulting and overrides a base file in an overlay.
type MergeConfig struct {
	BatchSize              int    `toml:"batch_size"`
	BatchMaxBytes          string `toml:"batch_max_bytes"`
	FetchConcurrency       int    `toml:"fetch_concurrency"`
	Collision              string `toml:"collision"`
	HeaderRows             *int   `toml:"header_rows"`
	DefaultDestinationName string `toml:"default_destination_name"`
	Recursive              *bool  `toml:"recursive"`
}

// BatchMaxBytesValue returns BatchMaxBytes in bytes.
func (c *MergeConfig) BatchMaxBytesValue() int64 {
	n, _ := formatting.ParseBytes(c.BatchMaxBytes)
	return n
}

// CollisionPolicy returns Collision as a drive.Policy.
func (c *MergeConfig) CollisionPolicy() drive.Policy {
	p, _ := drive.ParsePolicy(c.Collision)
	return p
}

// HeaderRowCount returns the number of roster header rows to skip.
func (c *MergeConfig) HeaderRowCount() int {
	if c.HeaderRows == nil {
		return coordinator.DefaultHeaderRows
	}
	return *c.HeaderRows
}

// RecursiveSearch reports whether sources are searched recursively.
func (c *MergeConfig) RecursiveSearch() bool {
	return c.Recursive != nil && *c.Recursive
}

// MergerConfig converts the section to merger settings.
func (c *MergeConfig) MergerConfig() merger.Config {
	return merger.Config{
		BatchSize:        c.BatchSize,
		BatchMaxBytes:    c.BatchMaxBytesValue(),
		FetchConcurrency: c.FetchConcurrency,
		Collision:        c.CollisionPolicy(),
	}
}

// CoordinatorConfig converts the section to coordinator settings.
func (c *MergeConfig) CoordinatorConfig() coordinator.Config {
	return coordinator.Config{DestinationName: c.DefaultDestinationName}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *MergeConfig) Finalize() error {
	c.loadDefaults()
	if err := c.loadEnv(); err != nil {
		return err
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *MergeConfig) Merge(overlay *MergeConfig) {
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.BatchMaxBytes != "" {
		c.BatchMaxBytes = overlay.BatchMaxBytes
	}
	if overlay.FetchConcurrency != 0 {
		c.FetchConcurrency = overlay.FetchConcurrency
	}
	if overlay.Collision != "" {
		c.Collision = overlay.Collision
	}
	if overlay.HeaderRows != nil {
		n := *overlay.HeaderRows
		c.HeaderRows = &n
	}
	if overlay.DefaultDestinationName != "" {
		c.DefaultDestinationName = overlay.DefaultDestinationName
	}
	if overlay.Recursive != nil {
		b := *overlay.Recursive
		c.Recursive = &b
	}
}

func (c *MergeConfig) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = merger.DefaultBatchSize
	}
	if c.BatchMaxBytes == "" {
		c.BatchMaxBytes = formatting.FormatBytes(merger.DefaultBatchMaxBytes, 0)
	}
	if c.FetchConcurrency == 0 {
		c.FetchConcurrency = merger.DefaultFetchConcurrency
	}
	if c.Collision == "" {
		c.Collision = drive.PolicySkip.String()
	}
	if c.HeaderRows == nil {
		n := coordinator.DefaultHeaderRows
		c.HeaderRows = &n
	}
	if c.DefaultDestinationName == "" {
		c.DefaultDestinationName = coordinator.DefaultDestinationName
	}
	if c.Recursive == nil {
		b := false
		c.Recursive = &b
	}
}

func (c *MergeConfig) loadEnv() error {
	if v := os.Getenv(EnvMergeBatchSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMergeBatchSize, err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv(EnvMergeBatchMaxBytes); v != "" {
		c.BatchMaxBytes = v
	}
	if v := os.Getenv(EnvMergeFetchConcurrency); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMergeFetchConcurrency, err)
		}
		c.FetchConcurrency = n
	}
	if v := os.Getenv(EnvMergeCollision); v != "" {
		c.Collision = v
	}
	if v := os.Getenv(EnvMergeHeaderRows); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMergeHeaderRows, err)
		}
		c.HeaderRows = &n
	}
	if v := os.Getenv(EnvMergeDestinationName); v != "" {
		c.DefaultDestinationName = v
	}
	if v := os.Getenv(EnvMergeRecursive); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMergeRecursive, err)
		}
		c.Recursive = &b
	}
	return nil
}

func (c *MergeConfig) validate() error {
	if c.BatchSize < 2 {
		return fmt.Errorf("batch_size must be at least 2, got %d", c.BatchSize)
	}
	if _, err := formatting.ParseBytes(c.BatchMaxBytes); err != nil {
		return fmt.Errorf("invalid batch_max_bytes: %w", err)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be positive, got %d", c.FetchConcurrency)
	}
	if _, err := drive.ParsePolicy(c.Collision); err != nil {
		return err
	}
	if *c.HeaderRows < 0 {
		return fmt.Errorf("header_rows must not be negative, got %d", *c.HeaderRows)
	}
	return nil
}
