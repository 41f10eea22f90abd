package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jdimyadi/bimrl/internal/geometry"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ModelConfig is the persisted indexing configuration of one model. Cell
// codes of a model are only comparable while its world box and depth stay
// the same, so re-indexing reuses the stored values.
type ModelConfig struct {
	ModelID   string
	Unit      string
	World     geometry.BoundingBox
	MaxDepth  int
	Tolerance float64
	UpdatedAt time.Time
}

// SaveModelConfig inserts or replaces the configuration of cfg.ModelID.
func (db *DB) SaveModelConfig(ctx context.Context, cfg *ModelConfig) error {
	if cfg.ModelID == "" {
		return errors.New("save model config: empty model id")
	}
	if cfg.Unit == "" {
		cfg.Unit = "m"
	}
	cfg.UpdatedAt = time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO bimrl_model_config (
			model_id, unit,
			world_min_x, world_min_y, world_min_z,
			world_max_x, world_max_y, world_max_z,
			max_depth, tolerance, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(model_id) DO UPDATE SET
			unit = excluded.unit,
			world_min_x = excluded.world_min_x,
			world_min_y = excluded.world_min_y,
			world_min_z = excluded.world_min_z,
			world_max_x = excluded.world_max_x,
			world_max_y = excluded.world_max_y,
			world_max_z = excluded.world_max_z,
			max_depth = excluded.max_depth,
			tolerance = excluded.tolerance,
			updated_at = excluded.updated_at`,
		cfg.ModelID, cfg.Unit,
		cfg.World.Min.X, cfg.World.Min.Y, cfg.World.Min.Z,
		cfg.World.Max.X, cfg.World.Max.Y, cfg.World.Max.Z,
		cfg.MaxDepth, cfg.Tolerance, cfg.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save model config %s: %w", cfg.ModelID, err)
	}
	return nil
}

// LoadModelConfig returns the stored configuration of modelID, or an error
// wrapping ErrNotFound.
func (db *DB) LoadModelConfig(ctx context.Context, modelID string) (*ModelConfig, error) {
	var (
		cfg       = ModelConfig{ModelID: modelID}
		updatedAt int64
	)
	err := db.QueryRowContext(ctx, `
		SELECT unit,
			world_min_x, world_min_y, world_min_z,
			world_max_x, world_max_y, world_max_z,
			max_depth, tolerance, updated_at
		FROM bimrl_model_config WHERE model_id = ?`, modelID,
	).Scan(
		&cfg.Unit,
		&cfg.World.Min.X, &cfg.World.Min.Y, &cfg.World.Min.Z,
		&cfg.World.Max.X, &cfg.World.Max.Y, &cfg.World.Max.Z,
		&cfg.MaxDepth, &cfg.Tolerance, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("model config %s: %w", modelID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load model config %s: %w", modelID, err)
	}
	cfg.UpdatedAt = time.Unix(0, updatedAt)
	return &cfg, nil
}

// DeleteModel removes a model configuration together with its cells.
func (db *DB) DeleteModel(ctx context.Context, modelID string) error {
	err := withTx(db.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bimrl_spatialindex WHERE model_id = ?`, modelID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM bimrl_model_config WHERE model_id = ?`, modelID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete model %s: %w", modelID, err)
	}
	return nil
}
