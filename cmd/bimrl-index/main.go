// Command bimrl-index builds and queries the octree spatial index of a model.
//
// Usage:
//
//	bimrl-index -config tower.json -input elements.json
//	bimrl-index -model tower -query 0,0,0,10,10,3
//	bimrl-index -db bimrl.db migrate status
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdimyadi/bimrl/internal/config"
	"github.com/jdimyadi/bimrl/internal/db"
	"github.com/jdimyadi/bimrl/internal/monitoring"
	"github.com/jdimyadi/bimrl/internal/version"
)

var (
	configPath  = flag.String("config", "", "Path to a JSON index config (config/index.defaults.json when empty)")
	dbPath      = flag.String("db", "", "Path to the sqlite database (overrides database_path)")
	modelID     = flag.String("model", "", "Model id (overrides model_id)")
	inputPath   = flag.String("input", "", "JSON element batch to index")
	queryRegion = flag.String("query", "", "Print stored cells overlapping minx,miny,minz,maxx,maxy,maxz")
	adminAddr   = flag.String("admin", "", "Serve /metrics and /debug/pprof on this address while running")
	debug       = flag.Bool("debug", false, "Enable debug logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// loadConfig reads path, or the defaults file when path is empty. Built-in
// defaults apply only when no defaults file exists.
func loadConfig(path string) (*config.IndexConfig, error) {
	if path != "" {
		return config.LoadIndexConfig(path)
	}
	cfg, err := config.LoadDefaultConfig()
	if errors.Is(err, fs.ErrNotExist) {
		monitoring.Logf("no %s found, using built-in defaults", config.DefaultConfigPath)
		return config.DefaultIndexConfig(), nil
	}
	return cfg, err
}

func serveAdmin(addr string) {
	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	go func() {
		if err := http.ListenAndServe(addr, &admin); err != nil {
			log.Printf("admin server: %v", err)
		}
	}()
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("bimrl-index"))
		return
	}
	monitoring.SetDebug(*debug)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	path := cfg.GetDatabasePath()
	if *dbPath != "" {
		path = *dbPath
	}

	if flag.Arg(0) == "migrate" {
		if err := db.RunMigrateCommand(os.Stdout, flag.Args()[1:], path); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		return
	}

	id := cfg.ModelID
	if *modelID != "" {
		id = *modelID
	}
	if *adminAddr != "" {
		serveAdmin(*adminAddr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sum, err := run(ctx, options{
		cfg:     cfg,
		dbPath:  path,
		modelID: id,
		input:   *inputPath,
		query:   *queryRegion,
	}, os.Stdout)
	if sum.RunID != "" {
		log.Printf("run %s: %d elements, %d failed, %d cells", sum.RunID, sum.Elements, sum.Failed, sum.Cells)
	}
	if err != nil {
		stop()
		log.Fatalf("bimrl-index: %v", err)
	}
}
