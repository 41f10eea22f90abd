package db

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/jdimyadi/bimrl/internal/cellid"
	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/octree"
)

var _ octree.BatchWriter = (*CellStore)(nil)

// CellStore reads and writes the cells of one model.
type CellStore struct {
	db      *sql.DB
	modelID string
}

// NewCellStore creates a CellStore for modelID.
func NewCellStore(db *sql.DB, modelID string) *CellStore {
	return &CellStore{db: db, modelID: modelID}
}

// DeleteElements removes every stored cell of the given elements.
func (s *CellStore) DeleteElements(ctx context.Context, elementIDs []string) error {
	if len(elementIDs) == 0 {
		return nil
	}
	err := withTx(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `DELETE FROM bimrl_spatialindex WHERE model_id = ? AND element_id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, id := range elementIDs {
			if _, err := stmt.ExecContext(ctx, s.modelID, id); err != nil {
				return fmt.Errorf("element %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete cells: %w", err)
	}
	return nil
}

// WriteBatch stores records in a single transaction. A cell already stored
// for the same element is replaced.
func (s *CellStore) WriteBatch(ctx context.Context, records []octree.Record) error {
	if len(records) == 0 {
		return nil
	}
	err := withTx(s.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO bimrl_spatialindex (
				model_id, element_id, cell_id, depth,
				min_x, min_y, min_z, max_x, max_y, max_z, is_border
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range records {
			b := r.Bounds
			if _, err := stmt.ExecContext(ctx,
				s.modelID, r.ElementID, r.Cell.Key().Int64(), r.Depth,
				b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z,
				r.Border,
			); err != nil {
				return fmt.Errorf("element %s cell %v: %w", r.ElementID, r.Cell, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write %d cells: %w", len(records), err)
	}
	return nil
}

const cellColumns = `element_id, cell_id, depth, min_x, min_y, min_z, max_x, max_y, max_z, is_border`

// Query returns the stored cells whose bounds overlap region by more than
// tol, ordered by element and cell key.
func (s *CellStore) Query(ctx context.Context, region geometry.BoundingBox, tol float64) ([]octree.Record, error) {
	r := region.Expand(-tol)
	return s.query(ctx, `
		SELECT `+cellColumns+` FROM bimrl_spatialindex
		WHERE model_id = ?
			AND min_x <= ? AND max_x >= ?
			AND min_y <= ? AND max_y >= ?
			AND min_z <= ? AND max_z >= ?
`,
		s.modelID, r.Max.X, r.Min.X, r.Max.Y, r.Min.Y, r.Max.Z, r.Min.Z)
}

// Cells returns the stored cells of one element ordered by cell key.
func (s *CellStore) Cells(ctx context.Context, elementID string) ([]octree.Record, error) {
	return s.query(ctx, `
		SELECT `+cellColumns+` FROM bimrl_spatialindex
		WHERE model_id = ? AND element_id = ?`, s.modelID, elementID)
}

// ElementsInCells returns the distinct elements stored in any of the given
// cells or their descendants.
func (s *CellStore) ElementsInCells(ctx context.Context, cells []cellid.ID) ([]string, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	var (
		conds []string
		args  = []any{s.modelID}
	)
	for _, c := range cells {
		lo, hi := descendantRange(c)
		conds = append(conds, "(cell_id BETWEEN ? AND ?)")
		args = append(args, lo, hi)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT element_id FROM bimrl_spatialindex
		WHERE model_id = ? AND (`+strings.Join(conds, " OR ")+`)
		ORDER BY element_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("query elements in cells: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan element id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// descendantRange returns the signed storage range holding c and every
// descendant of c. Cell keys of a subtree are contiguous in unsigned order;
// the subtrees below octants 4..7 of the root map to negative int64 values,
// so a root query spans the full signed range.
func descendantRange(c cellid.ID) (int64, int64) {
	if c.Depth() == 0 {
		return -1 << 63, 1<<63 - 1
	}
	d := c.Depth()
	shift := uint(64 - 3*d)
	lo := uint64(c.Key())
	hi := lo | (uint64(1)<<shift - 1)
	return int64(lo), int64(hi)
}

// Count returns the number of stored cells of the model.
func (s *CellStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bimrl_spatialindex WHERE model_id = ?`, s.modelID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cells: %w", err)
	}
	return n, nil
}

func (s *CellStore) query(ctx context.Context, query string, args ...any) ([]octree.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cells: %w", err)
	}
	defer rows.Close()

	var out []octree.Record
	for rows.Next() {
		var (
			r      octree.Record
			cell   int64
			border bool
		)
		if err := rows.Scan(&r.ElementID, &cell, &r.Depth,
			&r.Bounds.Min.X, &r.Bounds.Min.Y, &r.Bounds.Min.Z,
			&r.Bounds.Max.X, &r.Bounds.Max.Y, &r.Bounds.Max.Z,
			&border,
		); err != nil {
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		r.Cell = cellid.FromInt64(cell)
		r.Border = border
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cells: %w", err)
	}
	// Storage order is signed; callers expect cell key order.
	slices.SortFunc(out, func(a, b octree.Record) int {
		if c := cmp.Compare(a.ElementID, b.ElementID); c != 0 {
			return c
		}
		return cmp.Compare(a.Cell, b.Cell)
	})
	return out, nil
}
