// Command server runs the inspire PIR server: it loads a two-lane
// deployment, publishes a snapshot, and serves the HTTP API spec.md §6
// describes. Flag parsing follows the pack's cobra convention (e.g.
// synnergy-network/cmd/synnergy/main.go) rather than hand-rolled flag
// parsing, even though this shell is thin (spec.md §1 Non-goals: no
// CLI/WASM glue beyond this entry point).
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
	"github.com/statepir/inspire/server"
	"github.com/statepir/inspire/snapshot"
)

// exit codes, per spec.md §6: 0 normal, 1 fatal load error (no lane
// loaded), 2 parameter-version mismatch.
const (
	exitOK                  = 0
	exitFatalLoadError      = 1
	exitParamsVersionMismatch = 2
)

func main() {
	var (
		configPath     string
		manifestPath   string
		hotDir         string
		coldDir        string
		listenAddr     string
		blockNumber    uint64
		bucketPath     string
		stemPath       string
		rangeDeltaPath string
	)

	root := &cobra.Command{
		Use:   "inspire-server",
		Short: "Private Information Retrieval server for Ethereum state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(runConfig{
				configPath:     configPath,
				manifestPath:   manifestPath,
				hotDir:         hotDir,
				coldDir:        coldDir,
				listenAddr:     listenAddr,
				blockNumber:    blockNumber,
				bucketPath:     bucketPath,
				stemPath:       stemPath,
				rangeDeltaPath: rangeDeltaPath,
			})
		},
	}

	root.Flags().StringVar(&configPath, "config", "config.json", "path to the two-lane config JSON file")
	root.Flags().StringVar(&manifestPath, "manifest", "manifest.json", "path to the hot-lane manifest JSON file")
	root.Flags().StringVar(&hotDir, "hot-dir", "./hot", "directory holding the hot lane's shards and CRS metadata")
	root.Flags().StringVar(&coldDir, "cold-dir", "./cold", "directory holding the cold lane's shards and CRS metadata")
	root.Flags().StringVar(&listenAddr, "listen", ":8080", "HTTP listen address")
	root.Flags().Uint64Var(&blockNumber, "block-number", 0, "block number this snapshot was extracted at")
	root.Flags().StringVar(&bucketPath, "bucket-index", "", "path to the bucket index file (optional)")
	root.Flags().StringVar(&stemPath, "stem-index", "", "path to the stem index file (optional)")
	root.Flags().StringVar(&rangeDeltaPath, "range-deltas", "", "path to the range-delta sync file (optional)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFatalLoadError)
	}
}

// runConfig bundles run's flag inputs so adding an optional path (like the
// index files below) doesn't grow an already-long positional parameter list.
type runConfig struct {
	configPath     string
	manifestPath   string
	hotDir         string
	coldDir        string
	listenAddr     string
	blockNumber    uint64
	bucketPath     string
	stemPath       string
	rangeDeltaPath string
}

func run(rc runConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := laneconfig.LoadTwoLaneConfig(rc.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	params := rlwe.DefaultParameters
	if cfg.ParamsVersion != params.Version {
		sugar.Errorw("config parameter version mismatch",
			"config_version", cfg.ParamsVersion,
			"compiled_version", params.Version,
		)
		os.Exit(exitParamsVersionMismatch)
	}

	r, err := ring.NewRing(params.N(), params.Q)
	if err != nil {
		return fmt.Errorf("building ring: %w", err)
	}

	manifest, err := laneconfig.LoadHotLaneManifest(rc.manifestPath)
	if err != nil {
		sugar.Warnw("hot-lane manifest missing, routing everything to cold", "error", err)
		manifest = &laneconfig.HotLaneManifest{}
	}
	router := laneconfig.NewLaneRouter(manifest)

	hotLayout := snapshot.LaneLayout{
		Lane:        laneconfig.Hot,
		ShardDir:    rc.hotDir,
		CRSMetaPath: rc.hotDir + "/crs_meta.json",
		EntryConfig: cfg.Hot,
	}
	coldLayout := snapshot.LaneLayout{
		Lane:        laneconfig.Cold,
		ShardDir:    rc.coldDir,
		CRSMetaPath: rc.coldDir + "/crs_meta.json",
		EntryConfig: cfg.Cold,
	}

	metrics := server.NewMetrics(prometheus.DefaultRegisterer)
	app := server.NewApp(r, params, cfg, router, hotLayout, coldLayout, metrics, sugar)

	if err := app.Reload(rc.blockNumber); err != nil {
		sugar.Errorw("initial snapshot load failed on both lanes", "error", err)
		os.Exit(exitFatalLoadError)
	}

	if rc.bucketPath != "" || rc.stemPath != "" || rc.rangeDeltaPath != "" {
		idx, err := server.LoadIndexState(server.IndexLayout{
			BucketPath:     rc.bucketPath,
			StemPath:       rc.stemPath,
			RangeDeltaPath: rc.rangeDeltaPath,
			BlockNumber:    rc.blockNumber,
		})
		if err != nil {
			sugar.Warnw("index state load failed, /index routes will report unloaded", "error", err)
		} else {
			app.IndexCell.Store(idx)
		}
	}

	handler := server.NewRouter(app)
	sugar.Infow("listening", "addr", rc.listenAddr)
	return http.ListenAndServe(rc.listenAddr, handler)
}
