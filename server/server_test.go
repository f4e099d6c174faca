package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/pir"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
	"github.com/statepir/inspire/snapshot"
)

func testParams() rlwe.ParameterSet {
	return rlwe.ParameterSet{
		LogN:         4,
		Q:            1152921504606830593, // 60-bit prime, 1 mod 32; keeps noise far below Delta/2
		P:            256,
		Sigma:        1.0,
		GadgetLogB:   20,
		GadgetLength: 3,
		Version:      rlwe.ParamsVersion,
	}
}

func writeRawState(t *testing.T, entryCount, entrySize int) (string, []byte) {
	t.Helper()
	raw := make([]byte, entryCount*entrySize)
	for i := range raw {
		raw[i] = byte(i*7 + 3)
	}
	path := filepath.Join(t.TempDir(), "lane.bin")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path, raw
}

func testApp(t *testing.T) (*App, []byte) {
	r, err := ring.NewRing(16, 1152921504606830593)
	require.NoError(t, err)

	router := laneconfig.NewLaneRouter(&laneconfig.HotLaneManifest{})
	cfg := &laneconfig.TwoLaneConfig{
		ParamsVersion: rlwe.ParamsVersion,
		Hot:           laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4},
		Cold:          laneconfig.LaneEntryConfig{EntryCount: 20, EntrySize: 4},
	}

	hotPath, hotRaw := writeRawState(t, 37, 4)
	hotLayout := snapshot.LaneLayout{
		Lane:        laneconfig.Hot,
		RawPath:     hotPath,
		EntryConfig: cfg.Hot,
	}
	coldPath, _ := writeRawState(t, 20, 4)
	coldLayout := snapshot.LaneLayout{
		Lane:        laneconfig.Cold,
		RawPath:     coldPath,
		EntryConfig: cfg.Cold,
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	logger := zap.NewNop().Sugar()

	app := NewApp(r, testParams(), cfg, router, hotLayout, coldLayout, metrics, logger)
	require.NoError(t, app.Reload(100))
	return app, hotRaw
}

func TestHealthAndLive(t *testing.T) {
	app, _ := testApp(t)
	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/live")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestInfoReportsConfigHash(t *testing.T) {
	app, _ := testApp(t)
	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()

	var info infoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	require.Equal(t, app.Config.ComputeHash(), info.ConfigHash)
	require.Equal(t, 37, info.HotEntries)
}

func TestQueryEndToEndBinary(t *testing.T) {
	app, hotRaw := testApp(t)
	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	snap := app.Cell.Load()
	ld := snap.Lane(laneconfig.Hot)

	const index = 5
	prng := ring.NewKeyedPRNG([]byte("client-test-prng"))
	kg := rlwe.NewKeyGenerator(app.Ring, ld.Bundle.Params, prng)
	sk := kg.GenSecretKey()

	state, q, err := pir.NewQuery(app.Ring, ld.Bundle.Params, ld.Config, index, sk, prng)
	require.NoError(t, err)

	wire := pir.EncodeQuery(q, app.Ring.N)
	resp, err := http.Post(srv.URL+"/query/hot/binary", "application/octet-stream", bytes.NewReader(wire))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	response, err := pir.DecodeResponse(body, app.Ring.N)
	require.NoError(t, err)

	entry, err := pir.Extract(app.Ring, ld.Bundle.Params, ld.Config, response, state)
	require.NoError(t, err)
	want := hotRaw[index*ld.Config.EntrySize : (index+1)*ld.Config.EntrySize]
	require.Equal(t, want, entry)
}

func TestCRSEndpointReturnsSeed(t *testing.T) {
	app, _ := testApp(t)
	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/crs/balances")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cr crsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cr))
	require.NotEmpty(t, cr.SeedHex)
	require.Equal(t, rlwe.ParamsVersion, cr.ParamsVersion)
}

// TestConcurrentQueriesDuringReload drives many concurrent queries against
// a server while it is repeatedly reloaded in the background, checking that
// every query succeeds and extracts the expected entry (never a torn read)
// — spec.md §8's snapshot/swap property.
func TestConcurrentQueriesDuringReload(t *testing.T) {
	app, hotRaw := testApp(t)
	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	stop := make(chan struct{})
	var reloadWG sync.WaitGroup
	reloadWG.Add(1)
	go func() {
		defer reloadWG.Done()
		block := uint64(200)
		for {
			select {
			case <-stop:
				return
			default:
				_ = app.Reload(block)
				block++
				time.Sleep(time.Millisecond)
			}
		}
	}()

	const numClients = 8
	const queriesPerClient = 10

	var wg sync.WaitGroup
	errs := make(chan error, numClients*queriesPerClient)
	for c := 0; c < numClients; c++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			prng := ring.NewKeyedPRNG([]byte(fmt.Sprintf("client-%d", clientID)))
			for q := 0; q < queriesPerClient; q++ {
				snap := app.Cell.Load()
				ld := snap.Lane(laneconfig.Hot)
				if ld == nil {
					errs <- nil
					continue
				}
				kg := rlwe.NewKeyGenerator(app.Ring, ld.Bundle.Params, prng)
				sk := kg.GenSecretKey()

				state, query, err := pir.NewQuery(app.Ring, ld.Bundle.Params, ld.Config, q%5, sk, prng)
				if err != nil {
					errs <- err
					continue
				}
				wire := pir.EncodeQuery(query, app.Ring.N)

				resp, err := http.Post(srv.URL+"/query/hot/binary", "application/octet-stream", bytes.NewReader(wire))
				if err != nil {
					errs <- err
					continue
				}
				body, err := io.ReadAll(resp.Body)
				resp.Body.Close()
				if err != nil {
					errs <- err
					continue
				}
				if resp.StatusCode != http.StatusOK {
					errs <- fmt.Errorf("client %d: status %d: %s", clientID, resp.StatusCode, string(body))
					continue
				}

				response, err := pir.DecodeResponse(body, app.Ring.N)
				if err != nil {
					errs <- err
					continue
				}
				entry, err := pir.Extract(app.Ring, ld.Bundle.Params, ld.Config, response, state)
				if err != nil {
					errs <- err
					continue
				}
				index := q % 5
				want := hotRaw[index*ld.Config.EntrySize : (index+1)*ld.Config.EntrySize]
				if !bytes.Equal(want, entry) {
					errs <- fmt.Errorf("client %d: index %d: want %x, got %x", clientID, index, want, entry)
					continue
				}
				errs <- nil
			}
		}(c)
	}
	wg.Wait()
	close(stop)
	reloadWG.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

// TestHealthReportsPartialLaneFailure checks spec.md §8 scenario 6's
// health semantics: when one lane fails to load (simulated here by a
// missing cold-lane state file), /health reports 503 and the per-lane
// flags, while the other lane keeps serving queries normally.
func TestHealthReportsPartialLaneFailure(t *testing.T) {
	r, err := ring.NewRing(16, 1152921504606830593)
	require.NoError(t, err)

	router := laneconfig.NewLaneRouter(&laneconfig.HotLaneManifest{})
	cfg := &laneconfig.TwoLaneConfig{
		ParamsVersion: rlwe.ParamsVersion,
		Hot:           laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4},
		Cold:          laneconfig.LaneEntryConfig{EntryCount: 20, EntrySize: 4},
	}

	hotPath, _ := writeRawState(t, 37, 4)
	hotLayout := snapshot.LaneLayout{
		Lane:        laneconfig.Hot,
		RawPath:     hotPath,
		EntryConfig: cfg.Hot,
	}
	badColdPath := filepath.Join(t.TempDir(), "missing-cold.bin")
	coldLayout := snapshot.LaneLayout{
		Lane:        laneconfig.Cold,
		RawPath:     badColdPath,
		EntryConfig: cfg.Cold,
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	logger := zap.NewNop().Sugar()

	app := NewApp(r, testParams(), cfg, router, hotLayout, coldLayout, metrics, logger)
	require.NoError(t, app.Reload(1))

	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.True(t, health.HotLoaded)
	require.False(t, health.ColdLoaded)

	resp, err = http.Get(srv.URL + "/crs/hot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/crs/cold")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCRSRejectsUnknownLane(t *testing.T) {
	app, _ := testApp(t)
	srv := httptest.NewServer(NewRouter(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/crs/unknown")
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
