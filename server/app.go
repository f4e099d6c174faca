package server

import (
	"math/bits"
	"time"

	"go.uber.org/zap"

	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
	"github.com/statepir/inspire/snapshot"
)

// App bundles everything a request handler needs: the live snapshot cell,
// the loader used to build a fresh one on /admin/reload, the ring/params
// this deployment is compiled for, the index broadcaster, and metrics. It
// is the server package's one piece of intentional global mutable state
// (spec.md §9), held behind *snapshot.Cell's atomic pointer rather than a
// mutex.
type App struct {
	Cell   *snapshot.Cell
	Loader *snapshot.Loader
	Ring   *ring.Ring
	Params rlwe.ParameterSet
	Config *laneconfig.TwoLaneConfig
	Router *laneconfig.LaneRouter

	Hot  snapshot.LaneLayout
	Cold snapshot.LaneLayout

	IndexCell *IndexCell

	Metrics  *Metrics
	Logger   *zap.SugaredLogger
	Hub      *IndexHub
	reloader *rateLimiter
}

// NewApp constructs an App. The caller is responsible for calling Reload
// once before serving traffic; Cell starts out empty (every query returns
// LaneNotLoaded) until that first successful load.
func NewApp(
	r *ring.Ring,
	params rlwe.ParameterSet,
	cfg *laneconfig.TwoLaneConfig,
	router *laneconfig.LaneRouter,
	hot, cold snapshot.LaneLayout,
	metrics *Metrics,
	logger *zap.SugaredLogger,
) *App {
	return &App{
		Cell:      snapshot.NewCell(nil),
		Loader:    snapshot.NewLoader(r, params, bits.Len64(params.P)-1, logger),
		Ring:      r,
		Params:    params,
		Config:    cfg,
		Router:    router,
		Hot:       hot,
		Cold:      cold,
		IndexCell: NewIndexCell(nil),
		Metrics:   metrics,
		Logger:    logger,
		Hub:       NewIndexHub(logger),
		reloader:  newRateLimiter(time.Second),
	}
}

// Reload builds a fresh Snapshot from the App's lane layouts and publishes
// it, tolerating exactly one lane's failure per
// snapshot.Loader.LoadSnapshot.
func (a *App) Reload(blockNumber uint64) error {
	snap, err := a.Loader.LoadSnapshot(a.Hot, a.Cold, blockNumber, a.Router)
	if err != nil {
		a.Metrics.ReloadsTotal.WithLabelValues("failure").Inc()
		return err
	}
	a.Cell.Store(snap)
	a.Metrics.ReloadsTotal.WithLabelValues("success").Inc()
	a.Logger.Infow("snapshot reloaded",
		"block_number", blockNumber,
		"hot_loaded", snap.Hot != nil,
		"cold_loaded", snap.Cold != nil,
	)
	return nil
}
