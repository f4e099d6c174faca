package snapshot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/statepir/inspire/apperr"
	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/pir"
	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// CRSMetadata is the sidecar JSON written next to a lane's CRS, recording
// the parameter version it was generated under and the seed a server
// regenerates automorphism keys from on load.
type CRSMetadata struct {
	PIRParamsVersion uint16 `json:"pir_params_version"`
	SeedHex          string `json:"seed_hex"`
	BlockNumber      uint64 `json:"block_number"`
}

// LaneLayout describes where one lane's on-disk material lives and how its
// database is backed.
type LaneLayout struct {
	Lane        laneconfig.Lane
	CRSMetaPath string // sidecar JSON
	ShardDir    string // mmap backend; empty to use RawPath instead
	RawPath     string // flat state bytes; empty to use ShardDir instead
	EntryConfig laneconfig.LaneEntryConfig
}

// Loader builds Snapshots from on-disk lane layouts, validating parameter
// versions against the version compiled into this binary.
type Loader struct {
	Ring           *ring.Ring
	Params         rlwe.ParameterSet
	CompiledVer    uint16
	SymbolBits     int
	Logger         *zap.SugaredLogger
}

// NewLoader constructs a Loader bound to a ring and parameter set, using
// params.Version as the compiled-in version new CRS metadata is checked
// against.
func NewLoader(r *ring.Ring, params rlwe.ParameterSet, symbolBits int, logger *zap.SugaredLogger) *Loader {
	return &Loader{Ring: r, Params: params, CompiledVer: params.Version, SymbolBits: symbolBits, Logger: logger}
}

// LoadLane executes the §4.F load protocol for one lane: read CRS
// metadata (warn and continue if missing, reject on version mismatch),
// open the database (mmap if ShardDir is set, otherwise in-memory from
// RawPath), and validate entry counts against EntryConfig.
func (l *Loader) LoadLane(layout LaneLayout) (*LaneData, error) {
	log := l.Logger.With("lane", layout.Lane.String())

	seed := []byte("default-crs-seed")
	if layout.CRSMetaPath != "" {
		meta, err := readCRSMetadata(layout.CRSMetaPath)
		if os.IsNotExist(err) {
			log.Warnw("CRS metadata missing, using default seed (legacy layout)")
		} else if err != nil {
			return nil, apperr.New(apperr.KindIO, "load_lane", err)
		} else {
			if meta.PIRParamsVersion != l.CompiledVer {
				return nil, apperr.New(apperr.KindParamsVersionMismatch, "load_lane",
					fmt.Errorf("CRS metadata version %d != compiled version %d", meta.PIRParamsVersion, l.CompiledVer))
			}
			decoded, err := hex.DecodeString(meta.SeedHex)
			if err != nil {
				return nil, apperr.New(apperr.KindIO, "load_lane", fmt.Errorf("bad seed_hex: %w", err))
			}
			seed = decoded
		}
	}

	bundle, err := pir.Setup(l.Ring, l.Params, seed)
	if err != nil {
		return nil, apperr.New(apperr.KindIO, "load_lane", err)
	}

	cfg, err := pirdb.NewShardConfig(l.Ring.N, layout.EntryConfig.EntrySize, layout.EntryConfig.EntryCount, l.SymbolBits)
	if err != nil {
		return nil, apperr.New(apperr.KindConfigMismatch, "load_lane", err)
	}

	var db pirdb.Database
	switch {
	case layout.ShardDir != "":
		db, err = pirdb.OpenMmapDatabase(layout.ShardDir, cfg)
	case layout.RawPath != "":
		var raw []byte
		raw, err = os.ReadFile(layout.RawPath)
		if err == nil && len(raw) != cfg.TotalEntries*cfg.EntrySize {
			return nil, apperr.New(apperr.KindConfigMismatch, "load_lane",
				fmt.Errorf("raw state is %d bytes, config expects %d entries of %d bytes", len(raw), cfg.TotalEntries, cfg.EntrySize))
		}
		if err == nil {
			db, err = pirdb.EncodeInMemory(l.Ring, cfg, raw)
		}
	default:
		err = fmt.Errorf("lane layout has neither ShardDir nor RawPath set")
	}
	if err != nil {
		return nil, apperr.New(apperr.KindIO, "load_lane", err)
	}

	return &LaneData{Bundle: bundle, Database: db, Config: cfg}, nil
}

// LoadSnapshot loads both lanes, tolerating exactly one failure (the failed
// lane's LaneData is nil and the error is logged, not returned); if both
// lanes fail, LoadSnapshot returns an error since a server with no loaded
// lane cannot do anything useful.
func (l *Loader) LoadSnapshot(hot, cold LaneLayout, blockNumber uint64, router *laneconfig.LaneRouter) (*Snapshot, error) {
	hotData, hotErr := l.tryLoad(hot)
	coldData, coldErr := l.tryLoad(cold)

	if hotData == nil && coldData == nil {
		return nil, fmt.Errorf("snapshot: both lanes failed to load: hot=%v cold=%v", hotErr, coldErr)
	}

	return &Snapshot{
		Hot:           hotData,
		Cold:          coldData,
		Router:        router,
		BlockNumber:   blockNumber,
		ParamsVersion: l.CompiledVer,
	}, nil
}

func (l *Loader) tryLoad(layout LaneLayout) (*LaneData, error) {
	data, err := l.LoadLane(layout)
	if err != nil {
		l.Logger.Errorw("lane failed to load",
			"lane", layout.Lane.String(),
			"error", err,
		)
		return nil, err
	}
	return data, nil
}

func readCRSMetadata(path string) (*CRSMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var meta CRSMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parsing CRS metadata %s: %w", filepath.Base(path), err)
	}
	return &meta, nil
}
