package pir

import (
	"fmt"

	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// Extract recovers the raw entry bytes a client originally queried for from
// a server's response, using the secret key and offset stashed in state by
// NewQuery/NewSeededQuery. Because NewQuery's selector rotates the target
// symbol down to coefficient 0 (see selectorCoefficient), extraction always
// reads coefficient 0 of each decrypted response polynomial, regardless of
// the original offset within the shard.
func Extract(r *ring.Ring, params rlwe.ParameterSet, cfg pirdb.ShardConfig, response []*rlwe.Ciphertext, state *ClientState) ([]byte, error) {
	if len(response) != cfg.PolysPerShard {
		return nil, fmt.Errorf("pir: response has %d polynomials, expected %d", len(response), cfg.PolysPerShard)
	}

	dec := rlwe.NewDecryptor(r, params)
	entry := make([]byte, cfg.EntrySize)
	for k, ct := range response {
		coeff := dec.Decrypt(ct, state.SecretKey)
		sym := coeff.Coeffs[0]
		off := k * cfg.SymbolBytes
		for b := 0; b < cfg.SymbolBytes; b++ {
			if off+b < cfg.EntrySize {
				entry[off+b] = byte(sym >> (8 * uint(b)))
			}
		}
	}
	return entry, nil
}
