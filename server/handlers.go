package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/zstd"

	"github.com/statepir/inspire/apperr"
	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/pir"
)

func cacheControl(w http.ResponseWriter, maxAge time.Duration) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func parseLaneParam(r *http.Request) (laneconfig.Lane, error) {
	return laneconfig.ParseLane(chi.URLParam(r, "lane"))
}

// handleLive always answers 200: the process is up.
func (a *App) handleLive(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

type healthResponse struct {
	HotLoaded  bool `json:"hot_loaded"`
	ColdLoaded bool `json:"cold_loaded"`
}

// handleHealth answers 200 only when both lanes are loaded.
func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := a.Cell.Load()
	resp := healthResponse{}
	if snap != nil {
		resp.HotLoaded = snap.Hot != nil
		resp.ColdLoaded = snap.Cold != nil
	}
	if !resp.HotLoaded || !resp.ColdLoaded {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	writeJSON(w, resp)
}

type infoResponse struct {
	ParamsVersion uint16 `json:"params_version"`
	ConfigHash    string `json:"config_hash"`
	HotEntries    int    `json:"hot_entry_count"`
	ColdEntries   int    `json:"cold_entry_count"`
	BlockNumber   uint64 `json:"block_number"`
}

// handleInfo reports deployment shape: version, config hash, entry
// counts, current block — enough for a client to detect a shape change
// before issuing a query, per the restored config-hash negotiation
// mechanism.
func (a *App) handleInfo(w http.ResponseWriter, r *http.Request) {
	snap := a.Cell.Load()
	var blockNumber uint64
	if snap != nil {
		blockNumber = snap.BlockNumber
	}
	cacheControl(w, 5*time.Second)
	writeJSON(w, infoResponse{
		ParamsVersion: a.Params.Version,
		ConfigHash:    a.Config.ComputeHash(),
		HotEntries:    a.Config.Hot.EntryCount,
		ColdEntries:   a.Config.Cold.EntryCount,
		BlockNumber:   blockNumber,
	})
}

type crsResponse struct {
	SeedHex       string `json:"seed_hex"`
	ParamsVersion uint16 `json:"params_version"`
	NumShards     int    `json:"num_shards"`
	D             int    `json:"d"`
	EntrySize     int    `json:"entry_size"`
	PolysPerShard int    `json:"polys_per_shard"`
}

// handleCRS returns the CRS seed and shard config for a lane so a client
// can build queries against it.
func (a *App) handleCRS(w http.ResponseWriter, r *http.Request) {
	lane, err := parseLaneParam(r)
	if err != nil {
		writeError(w, apperr.New(apperr.KindInvalidQuery, "crs", err))
		return
	}
	snap := a.Cell.Load()
	if snap == nil || snap.Lane(lane) == nil {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "crs", fmt.Errorf("lane %s not loaded", lane)))
		return
	}
	ld := snap.Lane(lane)
	cacheControl(w, 30*time.Second)
	writeJSON(w, crsResponse{
		SeedHex:       fmt.Sprintf("%x", ld.Bundle.CRS.Seed()),
		ParamsVersion: ld.Bundle.Params.Version,
		NumShards:     ld.Config.NumShards,
		D:             ld.Config.D,
		EntrySize:     ld.Config.EntrySize,
		PolysPerShard: ld.Config.PolysPerShard,
	})
}

type jsonQuery struct {
	NumShards     int    `json:"num_shards"`
	ParamsVersion uint16 `json:"params_version"`
	PackingB64    string `json:"packing_b64"`
}

type jsonResponse struct {
	ResponseB64 string `json:"response_b64"`
}

type jsonSeededQuery struct {
	NumShards     int    `json:"num_shards"`
	ParamsVersion uint16 `json:"params_version"`
	DataB64       string `json:"data_b64"`
}

// handleQuery answers POST /query/{lane} (JSON full query).
func (a *App) handleQuery(w http.ResponseWriter, r *http.Request) {
	a.serveQuery(w, r, false, false)
}

// handleQueryBinary answers POST /query/{lane}/binary.
func (a *App) handleQueryBinary(w http.ResponseWriter, r *http.Request) {
	a.serveQuery(w, r, false, true)
}

// handleSeededQuery answers POST /query/{lane}/seeded.
func (a *App) handleSeededQuery(w http.ResponseWriter, r *http.Request) {
	a.serveQuery(w, r, true, false)
}

// handleSeededQueryBinary answers POST /query/{lane}/seeded/binary.
func (a *App) handleSeededQueryBinary(w http.ResponseWriter, r *http.Request) {
	a.serveQuery(w, r, true, true)
}

func (a *App) serveQuery(w http.ResponseWriter, r *http.Request, seeded, binary bool) {
	start := time.Now()
	lane, err := parseLaneParam(r)
	if err != nil {
		writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
		return
	}

	snap := a.Cell.Load()
	if snap == nil || snap.Lane(lane) == nil {
		a.Metrics.QueriesTotal.WithLabelValues(lane.String(), "lane_not_loaded").Inc()
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "query", fmt.Errorf("lane %s not loaded", lane)))
		return
	}
	ld := snap.Lane(lane)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
		return
	}

	var q *pir.Query
	if binary {
		if seeded {
			sq, err := pir.DecodeSeededQuery(body, a.Ring.N)
			if err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
			q = pir.ExpandSeededQuery(a.Ring, sq)
		} else {
			q, err = pir.DecodeQuery(body, a.Ring.N)
			if err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
		}
	} else {
		if seeded {
			var jq jsonSeededQuery
			if err := json.Unmarshal(body, &jq); err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
			raw, err := base64.StdEncoding.DecodeString(jq.DataB64)
			if err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
			sq, err := pir.DecodeSeededQuery(raw, a.Ring.N)
			if err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
			q = pir.ExpandSeededQuery(a.Ring, sq)
		} else {
			var jq jsonQuery
			if err := json.Unmarshal(body, &jq); err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
			raw, err := base64.StdEncoding.DecodeString(jq.PackingB64)
			if err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
			q, err = pir.DecodeQuery(raw, a.Ring.N)
			if err != nil {
				writeError(w, apperr.New(apperr.KindInvalidQuery, "query", err))
				return
			}
		}
	}

	response, err := pir.Respond(a.Ring, ld.Database, q, ld.Bundle.Params)
	if err != nil {
		a.Metrics.QueriesTotal.WithLabelValues(lane.String(), "error").Inc()
		writeError(w, err)
		return
	}

	a.Metrics.QueriesTotal.WithLabelValues(lane.String(), "success").Inc()
	a.Metrics.QueryDuration.WithLabelValues(lane.String()).Observe(time.Since(start).Seconds())

	encoded := pir.EncodeResponse(response)
	if binary {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(encoded)
		return
	}
	writeJSON(w, jsonResponse{ResponseB64: base64.StdEncoding.EncodeToString(encoded)})
}

// handleIndexCompressed answers GET /index: the bucket index, zstd
// compressed, for clients that can decompress (the WASM client prefers
// /index/raw instead, since bundling a zstd decoder is the heavier
// dependency there).
func (a *App) handleIndexCompressed(w http.ResponseWriter, r *http.Request) {
	st := a.IndexCell.Load()
	if st == nil || st.Bucket == nil {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "index", fmt.Errorf("index not loaded")))
		return
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		writeError(w, apperr.New(apperr.KindIO, "index", err))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Encoding", "zstd")
	cacheControl(w, 5*time.Second)
	_, _ = enc.Write(st.Bucket.ToBytes())
	_ = enc.Close()
}

// handleIndexRaw answers GET /index/raw: the bucket index, uncompressed.
func (a *App) handleIndexRaw(w http.ResponseWriter, r *http.Request) {
	st := a.IndexCell.Load()
	if st == nil || st.Bucket == nil {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "index", fmt.Errorf("index not loaded")))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	cacheControl(w, 5*time.Second)
	_, _ = w.Write(st.Bucket.ToBytes())
}

type indexInfoResponse struct {
	NumBuckets    int    `json:"num_buckets"`
	TotalEntries  uint64 `json:"total_entries"`
	BlockNumber   uint64 `json:"block_number"`
}

// handleIndexInfo answers GET /index/info.
func (a *App) handleIndexInfo(w http.ResponseWriter, r *http.Request) {
	st := a.IndexCell.Load()
	if st == nil || st.Bucket == nil {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "index", fmt.Errorf("index not loaded")))
		return
	}
	writeJSON(w, indexInfoResponse{
		NumBuckets:   len(st.Bucket.Counts),
		TotalEntries: st.Bucket.TotalEntries(),
		BlockNumber:  st.Bucket.BlockNumber,
	})
}

// handleIndexSubscribe answers GET /index/subscribe: upgrades to a
// websocket and streams bucket deltas as they're produced.
func (a *App) handleIndexSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := a.Hub.Subscribe(w, r); err != nil {
		a.Logger.Warnw("index subscribe upgrade failed", "error", err)
		return
	}
	a.Metrics.Subscriptions.Set(float64(a.Hub.Count()))
}

// handleIndexStems answers GET /index/stems: the stem index, binary.
func (a *App) handleIndexStems(w http.ResponseWriter, r *http.Request) {
	st := a.IndexCell.Load()
	if st == nil || st.Stem == nil {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "index_stems", fmt.Errorf("stem index not loaded")))
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	cacheControl(w, 5*time.Second)
	_, _ = w.Write(st.Stem.ToBytes())
}

// handleIndexDeltas answers GET /index/deltas: the range-delta file,
// serving HTTP range requests via http.ServeFile so a client can fetch
// just the range it needs by byte offset.
func (a *App) handleIndexDeltas(w http.ResponseWriter, r *http.Request) {
	st := a.IndexCell.Load()
	if st == nil || st.RangeDeltaPath == "" {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "index_deltas", fmt.Errorf("range-delta file not loaded")))
		return
	}
	http.ServeFile(w, r, st.RangeDeltaPath)
}

type rangeDirectoryEntryJSON struct {
	BlocksCovered uint32 `json:"blocks_covered"`
	ByteOffset    uint32 `json:"byte_offset"`
	ByteSize      uint32 `json:"byte_size"`
	EntryCount    uint32 `json:"entry_count"`
}

// handleIndexDeltasInfo answers GET /index/deltas/info: the range
// directory as JSON, so a client can pick the byte range to fetch without
// downloading the whole file first.
func (a *App) handleIndexDeltasInfo(w http.ResponseWriter, r *http.Request) {
	st := a.IndexCell.Load()
	if st == nil || st.RangeDeltaPath == "" {
		writeError(w, apperr.New(apperr.KindLaneNotLoaded, "index_deltas_info", fmt.Errorf("range-delta file not loaded")))
		return
	}
	out := make([]rangeDirectoryEntryJSON, len(st.RangeDirectory))
	for i, e := range st.RangeDirectory {
		out[i] = rangeDirectoryEntryJSON{e.BlocksCovered, e.ByteOffset, e.ByteSize, e.EntryCount}
	}
	writeJSON(w, out)
}

type reloadRequest struct {
	BlockNumber uint64 `json:"block_number"`
}

// handleAdminReload answers POST /admin/reload: rebuilds and publishes a
// fresh Snapshot. Rate-limited to once per second; the router restricts
// this route to localhost (see router.go's localOnly middleware).
func (a *App) handleAdminReload(w http.ResponseWriter, r *http.Request) {
	if !a.reloader.Allow(time.Now()) {
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	var req reloadRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := a.Reload(req.BlockNumber); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
