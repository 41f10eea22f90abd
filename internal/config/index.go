package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jdimyadi/bimrl/internal/cellid"
	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/octree"
	"github.com/jdimyadi/bimrl/internal/units"
)

// DefaultConfigPath is the path to the canonical indexing defaults file.
const DefaultConfigPath = "config/index.defaults.json"

// IndexConfig holds the indexing settings of one model. Fields omitted from
// the JSON file stay nil and the Get* methods supply the defaults.
type IndexConfig struct {
	ModelID  string      `json:"model_id,omitempty"`
	Unit     *string     `json:"unit,omitempty"`
	WorldMin *[3]float64 `json:"world_min,omitempty"`
	WorldMax *[3]float64 `json:"world_max,omitempty"`

	// Traversal params
	MaxDepth         *int     `json:"max_depth,omitempty"` // derived from depth_threshold_m when absent
	DepthThresholdM  *float64 `json:"depth_threshold_m,omitempty"`
	Tolerance        *float64 `json:"tolerance,omitempty"` // in model units
	Workers          *int     `json:"workers,omitempty"`
	AABBPrefilter    *bool    `json:"aabb_prefilter,omitempty"`
	StartFromEnclose *bool    `json:"start_from_enclosing_cell,omitempty"`

	// Storage params
	BatchSize    *int    `json:"batch_size,omitempty"`
	DatabasePath *string `json:"database_path,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyIndexConfig returns an IndexConfig with all fields set to nil.
func EmptyIndexConfig() *IndexConfig {
	return &IndexConfig{}
}

// DefaultIndexConfig returns a config with every optional field set to its
// default. The world box is left unset.
func DefaultIndexConfig() *IndexConfig {
	return &IndexConfig{
		Unit:             ptrString(units.M),
		DepthThresholdM:  ptrFloat64(units.DefaultDepthThresholdM),
		Tolerance:        ptrFloat64(units.DefaultTolerance(units.M)),
		Workers:          ptrInt(octree.DefaultWorkers),
		AABBPrefilter:    ptrBool(true),
		StartFromEnclose: ptrBool(true),
		BatchSize:        ptrInt(octree.DefaultBatchSize),
		DatabasePath:     ptrString("bimrl.db"),
	}
}

// LoadIndexConfig loads an IndexConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadIndexConfig(path string) (*IndexConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyIndexConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and common parent directories. The error
// wraps fs.ErrNotExist when no defaults file is found.
func LoadDefaultConfig() (*IndexConfig, error) {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/ and cmd/bimrl-index/
	}
	for _, path := range candidates {
		cfg, err := LoadIndexConfig(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return cfg, nil
	}
	return nil, fmt.Errorf("cannot find %s: %w", DefaultConfigPath, fs.ErrNotExist)
}

// MustLoadDefaultConfig is LoadDefaultConfig for test setup. It panics if the
// defaults cannot be loaded.
func MustLoadDefaultConfig() *IndexConfig {
	cfg, err := LoadDefaultConfig()
	if err != nil {
		panic(fmt.Sprintf("%v - run tests from repository root", err))
	}
	return cfg
}

// Validate checks that the configuration values are valid.
func (c *IndexConfig) Validate() error {
	if c.Unit != nil && !units.IsValid(*c.Unit) {
		return fmt.Errorf("unit must be one of %s, got %q", units.GetValidUnitsString(), *c.Unit)
	}

	if (c.WorldMin == nil) != (c.WorldMax == nil) {
		return fmt.Errorf("world_min and world_max must be set together")
	}
	if c.WorldMin != nil {
		for i := range 3 {
			if !(c.WorldMax[i] > c.WorldMin[i]) {
				return fmt.Errorf("world_max must exceed world_min on every axis, got %v and %v", *c.WorldMin, *c.WorldMax)
			}
		}
	}

	if c.MaxDepth != nil {
		if *c.MaxDepth < 0 || *c.MaxDepth > cellid.MaxDepth {
			return fmt.Errorf("max_depth must be between 0 and %d, got %d", cellid.MaxDepth, *c.MaxDepth)
		}
	}

	if c.DepthThresholdM != nil && !(*c.DepthThresholdM > 0) {
		return fmt.Errorf("depth_threshold_m must be positive, got %f", *c.DepthThresholdM)
	}

	if c.Tolerance != nil && !(*c.Tolerance >= 0) {
		return fmt.Errorf("tolerance must be non-negative, got %g", *c.Tolerance)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	if c.BatchSize != nil && *c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1, got %d", *c.BatchSize)
	}

	return nil
}

// GetUnit returns the unit value or the default.
func (c *IndexConfig) GetUnit() string {
	if c.Unit == nil || *c.Unit == "" {
		return units.M // default
	}
	return *c.Unit
}

// HasWorld reports whether the world box is configured.
func (c *IndexConfig) HasWorld() bool {
	return c.WorldMin != nil && c.WorldMax != nil
}

// GetWorld returns the configured world box, or the zero box when unset.
func (c *IndexConfig) GetWorld() geometry.BoundingBox {
	if !c.HasWorld() {
		return geometry.BoundingBox{}
	}
	lo, hi := *c.WorldMin, *c.WorldMax
	return geometry.BoundingBox{
		Min: geometry.NewPoint3D(lo[0], lo[1], lo[2]),
		Max: geometry.NewPoint3D(hi[0], hi[1], hi[2]),
	}
}

// GetDepthThresholdM returns the depth_threshold_m value or the default.
func (c *IndexConfig) GetDepthThresholdM() float64 {
	if c.DepthThresholdM == nil {
		return units.DefaultDepthThresholdM // default
	}
	return *c.DepthThresholdM
}

// GetMaxDepth returns max_depth, or the recommended depth for the world box
// in the configured unit when unset.
func (c *IndexConfig) GetMaxDepth() int {
	if c.MaxDepth != nil {
		return *c.MaxDepth
	}
	return octree.RecommendedDepth(c.GetWorld(), units.DepthThreshold(c.GetDepthThresholdM(), c.GetUnit()))
}

// GetTolerance returns the tolerance value or the default for the unit.
func (c *IndexConfig) GetTolerance() float64 {
	if c.Tolerance == nil {
		return units.DefaultTolerance(c.GetUnit()) // default
	}
	return *c.Tolerance
}

// GetWorkers returns the workers value or the default.
func (c *IndexConfig) GetWorkers() int {
	if c.Workers == nil {
		return octree.DefaultWorkers // default
	}
	return *c.Workers
}

// GetAABBPrefilter returns the aabb_prefilter value or the default.
func (c *IndexConfig) GetAABBPrefilter() bool {
	if c.AABBPrefilter == nil {
		return true // default
	}
	return *c.AABBPrefilter
}

// GetStartFromEnclosingCell returns the start_from_enclosing_cell value or
// the default.
func (c *IndexConfig) GetStartFromEnclosingCell() bool {
	if c.StartFromEnclose == nil {
		return true // default
	}
	return *c.StartFromEnclose
}

// GetBatchSize returns the batch_size value or the default.
func (c *IndexConfig) GetBatchSize() int {
	if c.BatchSize == nil {
		return octree.DefaultBatchSize // default
	}
	return *c.BatchSize
}

// GetDatabasePath returns the database_path value or the default.
func (c *IndexConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "bimrl.db" // default
	}
	return *c.DatabasePath
}

// IndexingContext builds the traversal context described by the config.
func (c *IndexConfig) IndexingContext() octree.IndexingContext {
	return octree.IndexingContext{
		ModelID:            c.ModelID,
		World:              c.GetWorld(),
		MaxDepth:           c.GetMaxDepth(),
		Tolerance:          c.GetTolerance(),
		Workers:            c.GetWorkers(),
		Prefilter:          c.GetAABBPrefilter(),
		StartFromEnclosing: c.GetStartFromEnclosingCell(),
		BatchSize:          c.GetBatchSize(),
	}
}
