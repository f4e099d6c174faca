package laneconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLaneAliases(t *testing.T) {
	cases := map[string]Lane{
		"hot": Hot, "Hot": Hot, "HOT": Hot, "balances": Hot, "Balances": Hot,
		"cold": Cold, "COLD": Cold, "storage": Cold, "Storage": Cold,
	}
	for in, want := range cases {
		got, err := ParseLane(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseLane("nonsense")
	require.Error(t, err)
}

func TestLaneRouterRoutesHotAddresses(t *testing.T) {
	var hotAddr, coldAddr [20]byte
	hotAddr[0] = 0xAA
	coldAddr[0] = 0xBB

	manifest := &HotLaneManifest{
		Version: 1,
		Contracts: []HotContract{
			{Address: hotAddr, Name: "WETH", Category: "token", SlotCount: 2},
		},
	}
	router := NewLaneRouter(manifest)

	require.Equal(t, Hot, router.Route(hotAddr))
	require.Equal(t, Cold, router.Route(coldAddr))
	require.True(t, router.IsHot(hotAddr))
	require.False(t, router.IsHot(coldAddr))
}

func TestTwoLaneConfigComputeHashIsStableAndSensitive(t *testing.T) {
	cfg := TwoLaneConfig{
		ParamsVersion: 2,
		Hot:           LaneEntryConfig{EntryCount: 1024, EntrySize: 84},
		Cold:          LaneEntryConfig{EntryCount: 1 << 20, EntrySize: 84},
	}
	h1 := cfg.ComputeHash()
	h2 := cfg.ComputeHash()
	require.Equal(t, h1, h2)

	changed := cfg
	changed.Cold.EntryCount++
	require.NotEqual(t, h1, changed.ComputeHash())
}

func TestLoadHotLaneManifestAndConfig(t *testing.T) {
	dir := t.TempDir()

	manifestPath := filepath.Join(dir, "manifest.json")
	require.NoError(t, writeJSON(manifestPath, HotLaneManifest{
		Version: 1,
		Contracts: []HotContract{
			{Name: "USDC", Category: "token", SlotCount: 1},
		},
	}))
	manifest, err := LoadHotLaneManifest(manifestPath)
	require.NoError(t, err)
	require.Len(t, manifest.Contracts, 1)

	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, writeJSON(configPath, TwoLaneConfig{
		ParamsVersion: 2,
		Hot:           LaneEntryConfig{EntryCount: 10, EntrySize: 84},
		Cold:          LaneEntryConfig{EntryCount: 20, EntrySize: 84},
	}))
	cfg, err := LoadTwoLaneConfig(configPath)
	require.NoError(t, err)
	require.Equal(t, uint16(2), cfg.ParamsVersion)
	require.Equal(t, LaneEntryConfig{EntryCount: 10, EntrySize: 84}, cfg.For(Hot))
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
