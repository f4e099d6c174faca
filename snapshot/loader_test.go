package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/statepir/inspire/apperr"
	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

func testParams() rlwe.ParameterSet {
	return rlwe.ParameterSet{
		LogN:         4,
		Q:            12289,
		P:            256,
		Sigma:        1.0,
		GadgetLogB:   5,
		GadgetLength: 3,
		Version:      rlwe.ParamsVersion,
	}
}

func writeRawState(t *testing.T, entryCount, entrySize int) string {
	t.Helper()
	raw := make([]byte, entryCount*entrySize)
	for i := range raw {
		raw[i] = byte(i*7 + 3)
	}
	path := filepath.Join(t.TempDir(), "lane.bin")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func writeCRSMeta(t *testing.T, version uint16) string {
	t.Helper()
	meta := CRSMetadata{PIRParamsVersion: version, SeedHex: "deadbeef", BlockNumber: 1}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "crs_meta.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func testLoader(t *testing.T) *Loader {
	r, err := ring.NewRing(16, 12289)
	require.NoError(t, err)
	logger := zap.NewNop().Sugar()
	return NewLoader(r, testParams(), 8, logger)
}

func TestLoadLaneSucceedsWithoutMetadata(t *testing.T) {
	l := testLoader(t)
	layout := LaneLayout{
		Lane:        laneconfig.Hot,
		RawPath:     writeRawState(t, 37, 4),
		EntryConfig: laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4},
	}

	data, err := l.LoadLane(layout)
	require.NoError(t, err)
	require.NotNil(t, data.Bundle)
	require.NotNil(t, data.Database)
	require.Equal(t, 37, data.Config.TotalEntries)
}

func TestLoadLaneRejectsParamsVersionMismatch(t *testing.T) {
	l := testLoader(t)
	layout := LaneLayout{
		Lane:        laneconfig.Hot,
		CRSMetaPath: writeCRSMeta(t, l.CompiledVer+1),
		RawPath:     writeRawState(t, 37, 4),
		EntryConfig: laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4},
	}

	_, err := l.LoadLane(layout)
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, apperr.KindParamsVersionMismatch, appErr.Kind)
}

func TestLoadSnapshotToleratesOneLaneFailure(t *testing.T) {
	l := testLoader(t)
	good := LaneLayout{
		Lane:        laneconfig.Hot,
		RawPath:     writeRawState(t, 37, 4),
		EntryConfig: laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4},
	}
	bad := LaneLayout{
		Lane:        laneconfig.Cold,
		RawPath:     "",
		EntryConfig: laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4},
	}

	router := laneconfig.NewLaneRouter(&laneconfig.HotLaneManifest{})
	snap, err := l.LoadSnapshot(good, bad, 100, router)
	require.NoError(t, err)
	require.NotNil(t, snap.Hot)
	require.Nil(t, snap.Cold)
}

func TestLoadSnapshotFailsWhenBothLanesFail(t *testing.T) {
	l := testLoader(t)
	bad := LaneLayout{Lane: laneconfig.Hot, EntryConfig: laneconfig.LaneEntryConfig{EntryCount: 37, EntrySize: 4}}
	router := laneconfig.NewLaneRouter(&laneconfig.HotLaneManifest{})

	_, err := l.LoadSnapshot(bad, bad, 100, router)
	require.Error(t, err)
}
