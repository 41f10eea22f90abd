package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jdimyadi/bimrl/internal/config"
	"github.com/jdimyadi/bimrl/internal/db"
	"github.com/jdimyadi/bimrl/internal/geometry"
	"github.com/jdimyadi/bimrl/internal/octree"
)

// options are the resolved command line settings.
type options struct {
	cfg     *config.IndexConfig
	dbPath  string
	modelID string
	input   string
	query   string
}

// summary reports what one invocation did.
type summary struct {
	RunID    string
	Elements int
	Failed   int
	Cells    int
	Matches  int
}

// resolveContext returns the indexing context of the model. A model indexed
// before keeps its stored world box, depth and tolerance so cell codes stay
// comparable; otherwise the configuration is stored for next time.
func resolveContext(ctx context.Context, database *db.DB, cfg *config.IndexConfig, modelID string) (octree.IndexingContext, error) {
	ictx := cfg.IndexingContext()
	ictx.ModelID = modelID

	stored, err := database.LoadModelConfig(ctx, modelID)
	switch {
	case err == nil:
		if cfg.HasWorld() && (stored.World != ictx.World || stored.MaxDepth != ictx.MaxDepth) {
			log.Printf("model %s: ignoring configured world %v depth %d, keeping stored world %v depth %d",
				modelID, ictx.World, ictx.MaxDepth, stored.World, stored.MaxDepth)
		}
		ictx.World = stored.World
		ictx.MaxDepth = stored.MaxDepth
		ictx.Tolerance = stored.Tolerance
	case db.IsNotFound(err):
		if !cfg.HasWorld() {
			return ictx, fmt.Errorf("model %s has no stored configuration and no world box is configured", modelID)
		}
		if err := ictx.Validate(); err != nil {
			return ictx, err
		}
		if err := database.SaveModelConfig(ctx, &db.ModelConfig{
			ModelID:   modelID,
			Unit:      cfg.GetUnit(),
			World:     ictx.World,
			MaxDepth:  ictx.MaxDepth,
			Tolerance: ictx.Tolerance,
		}); err != nil {
			return ictx, err
		}
		log.Printf("model %s: stored world %v depth %d tolerance %g", modelID, ictx.World, ictx.MaxDepth, ictx.Tolerance)
	default:
		return ictx, err
	}
	return ictx, ictx.Validate()
}

// run indexes the input batch, if any, then answers the region query, if
// any, writing matches to out.
func run(ctx context.Context, opts options, out io.Writer) (summary, error) {
	var sum summary
	if opts.modelID == "" {
		return sum, errors.New("model id is required")
	}
	if opts.input == "" && opts.query == "" {
		return sum, errors.New("nothing to do: set -input and/or -query")
	}

	database, err := db.NewDB(opts.dbPath)
	if err != nil {
		return sum, fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	ictx, err := resolveContext(ctx, database, opts.cfg, opts.modelID)
	if err != nil {
		return sum, err
	}
	cells := db.NewCellStore(database.DB, opts.modelID)

	if opts.input != "" {
		if err := indexInput(ctx, database, cells, ictx, opts.input, &sum); err != nil {
			return sum, err
		}
	}

	if opts.query != "" {
		region, err := parseRegion(opts.query)
		if err != nil {
			return sum, err
		}
		records, err := cells.Query(ctx, region, ictx.Tolerance)
		if err != nil {
			return sum, err
		}
		for _, r := range records {
			fmt.Fprintf(out, "%s\t%v\t%d\t%t\t%v\n", r.ElementID, r.Cell, r.Depth, r.Border, r.Bounds)
		}
		sum.Matches = len(records)
	}
	return sum, nil
}

func indexInput(ctx context.Context, database *db.DB, cells *db.CellStore, ictx octree.IndexingContext, path string, sum *summary) (err error) {
	elements, err := loadElements(path, ictx.Tolerance)
	if err != nil {
		return err
	}

	runs := db.NewRunStore(database.DB)
	r, err := runs.Start(ctx, ictx.ModelID)
	if err != nil {
		return err
	}
	sum.RunID = r.RunID
	defer func() {
		r.ElementCount, r.FailedCount, r.CellCount = sum.Elements, sum.Failed, sum.Cells
		// The run row is written even when ctx was canceled.
		if ferr := runs.Finish(context.WithoutCancel(ctx), r, err); ferr != nil && err == nil {
			err = ferr
		}
	}()

	tree, err := octree.New(ictx)
	if err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	if ictx.Workers > 0 {
		g.SetLimit(ictx.Workers)
	} else {
		g.SetLimit(octree.DefaultWorkers)
	}
	for _, e := range elements {
		g.Go(func() error {
			if _, err := tree.ComputeOctree(gctx, e.ID, e.Shape); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				log.Printf("index %s: %v", e.ID, err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sum.Elements = len(elements)
	sum.Failed = len(errs)
	n, err := tree.Flush(ctx, cells)
	sum.Cells = n
	if err != nil {
		return err
	}
	log.Printf("model %s: indexed %d elements (%d failed) into %d cells", ictx.ModelID, sum.Elements, sum.Failed, n)
	return errors.Join(errs...)
}

// parseRegion parses "minx,miny,minz,maxx,maxy,maxz".
func parseRegion(s string) (geometry.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return geometry.BoundingBox{}, fmt.Errorf("query region needs 6 comma separated values, got %d", len(parts))
	}
	var v [6]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geometry.BoundingBox{}, fmt.Errorf("query region value %d: %w", i+1, err)
		}
		v[i] = f
	}
	return geometry.NewBoundingBox(
		geometry.NewPoint3D(v[0], v[1], v[2]),
		geometry.NewPoint3D(v[3], v[4], v[5]),
	), nil
}
