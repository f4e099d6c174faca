// Package client is a thin Go HTTP client for the PIR server's query API:
// fetch a lane's CRS, build a query against it, submit it, and extract the
// answer. It mirrors the shape of the WASM client spec.md's Non-goals
// exclude building here, but stays server-agnostic (any implementation of
// the HTTP API in spec.md §6 works).
package client

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/bits"
	"net/http"
	"time"

	"github.com/statepir/inspire/laneconfig"
	"github.com/statepir/inspire/pir"
	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// Client talks to one PIR server over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New constructs a Client against baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

type crsResponse struct {
	SeedHex       string `json:"seed_hex"`
	ParamsVersion uint16 `json:"params_version"`
	NumShards     int    `json:"num_shards"`
	D             int    `json:"d"`
	EntrySize     int    `json:"entry_size"`
	PolysPerShard int    `json:"polys_per_shard"`
}

// LaneMaterial is everything a client needs to build queries against one
// lane, fetched once from GET /crs/{lane}.
type LaneMaterial struct {
	Seed   []byte
	Params rlwe.ParameterSet
	Config pirdb.ShardConfig
}

// FetchLaneMaterial retrieves and parses a lane's CRS/shard config.
func (c *Client) FetchLaneMaterial(lane laneconfig.Lane, baseParams rlwe.ParameterSet) (*LaneMaterial, error) {
	resp, err := c.HTTP.Get(fmt.Sprintf("%s/crs/%s", c.BaseURL, lane.String()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("client: GET /crs/%s returned %d", lane.String(), resp.StatusCode)
	}

	var cr crsResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, err
	}
	seed, err := hex.DecodeString(cr.SeedHex)
	if err != nil {
		return nil, fmt.Errorf("client: bad seed_hex: %w", err)
	}

	params := baseParams
	params.Version = cr.ParamsVersion
	// cr.D*cr.NumShards reconstructs an upper bound on total entries (the
	// server's actual count may be slightly lower if its last shard was
	// zero-padded); this only affects the bounds check for queries against
	// that padding, which the server answers with zeros, not an error.
	symbolBits := bits.Len64(params.P) - 1
	cfg, err := pirdb.NewShardConfig(cr.D, cr.EntrySize, cr.D*cr.NumShards, symbolBits)
	if err != nil {
		return nil, fmt.Errorf("client: rebuilding shard config: %w", err)
	}

	return &LaneMaterial{Seed: seed, Params: params, Config: cfg}, nil
}

// Query issues a private lookup for index against lane, using seeded
// queries (~50% smaller on the wire) and the binary response format.
func (c *Client) Query(lane laneconfig.Lane, mat *LaneMaterial, r *ring.Ring, index int, prng *ring.PRNG) ([]byte, error) {
	kg := rlwe.NewKeyGenerator(r, mat.Params, prng)
	sk := kg.GenSecretKey()

	state, sq, err := pir.NewSeededQuery(r, mat.Params, mat.Config, index, sk, mat.Seed, prng)
	if err != nil {
		return nil, err
	}

	wire := pir.EncodeSeededQuery(sq)
	url := fmt.Sprintf("%s/query/%s/seeded/binary", c.BaseURL, lane.String())
	resp, err := c.HTTP.Post(url, "application/octet-stream", bytes.NewReader(wire))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("client: query returned %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	response, err := pir.DecodeResponse(body, r.N)
	if err != nil {
		return nil, err
	}

	return pir.Extract(r, mat.Params, mat.Config, response, state)
}
