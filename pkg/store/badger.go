package store

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Config holds the configuration for the BadgerDB backing a triple store.
type Config struct {
	// DataDir is the directory where BadgerDB will store its data.
	DataDir string

	// InMemory enables in-memory mode (useful for testing).
	InMemory bool

	// BlockCacheSize is the size of the block cache in bytes.
	BlockCacheSize int64

	// IndexCacheSize is the size of the index cache in bytes.
	IndexCacheSize int64

	// Compression enables ZSTD compression.
	Compression bool

	// SyncWrites enables synchronous writes. Disabled for performance,
	// but may lose recent writes on crash.
	SyncWrites bool

	// Profile specifies the resource profile ("Serving", "Low-Mem").
	Profile string

	// ReadOnly enables read-only mode.
	ReadOnly bool

	// BypassLockGuard allows opening a store another process holds a lock on.
	BypassLockGuard bool
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.DataDir == "" && !c.InMemory {
		return fmt.Errorf("DataDir must be specified when InMemory is false")
	}
	if c.BlockCacheSize <= 0 {
		return fmt.Errorf("BlockCacheSize must be positive, got %d", c.BlockCacheSize)
	}
	if c.IndexCacheSize <= 0 {
		return fmt.Errorf("IndexCacheSize must be positive, got %d", c.IndexCacheSize)
	}
	return nil
}

// DefaultConfig returns a serving-oriented configuration.
func DefaultConfig(dataDir string) *Config {
	return &Config{
		DataDir:        dataDir,
		InMemory:       false,
		BlockCacheSize: 256 << 20, // 256MB
		IndexCacheSize: 128 << 20, // 128MB
		Compression:    true,
		SyncWrites:     false,
		Profile:        "Serving",
	}
}

// buildBadgerOptions converts Config to badger.Options based on Profile.
func buildBadgerOptions(cfg *Config) badger.Options {
	opts := badger.DefaultOptions(filepath.Join(cfg.DataDir, "badger"))

	if cfg.InMemory {
		opts = badger.DefaultOptions("")
		opts.InMemory = true
		return opts
	}

	// Conflict detection is unnecessary: triples are immutable except for
	// soft delete, which rewrites a single row.
	opts.DetectConflicts = false
	opts.BypassLockGuard = cfg.BypassLockGuard
	opts.BloomFalsePositive = 0.01

	if cfg.ReadOnly {
		opts.ReadOnly = true
	}

	if cfg.Compression {
		opts.Compression = options.ZSTD
	} else {
		opts.Compression = options.None
	}

	switch cfg.Profile {
	case "Low-Mem":
		// Optimized for constrained environments (Cloud Run 512MB-1GB).
		opts.ValueLogFileSize = 32 << 20 // 32MB
		opts.NumCompactors = 2
		opts.MemTableSize = 16 << 20
		opts.NumMemtables = 3
	case "Serving":
		fallthrough
	default:
		opts.ValueLogFileSize = 256 << 20 // 256MB
		opts.NumCompactors = 2
	}

	opts.BlockCacheSize = cfg.BlockCacheSize
	opts.IndexCacheSize = cfg.IndexCacheSize
	opts.SyncWrites = cfg.SyncWrites

	return opts
}

// openBadgerDB opens a BadgerDB instance with the given configuration.
func openBadgerDB(cfg *Config) (*badger.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return badger.Open(buildBadgerOptions(cfg))
}
