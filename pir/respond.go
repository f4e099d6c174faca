package pir

import (
	"runtime"
	"sync"

	"github.com/statepir/inspire/pirdb"
	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// Respond computes the server's answer to q against db: for every shard i,
// the shard's PolysPerShard plaintext polynomials are multiplied by q's
// i-th packing ciphertext and accumulated into a running total; shards
// whose packing ciphertext encrypts zero contribute only noise, so only the
// client's target shard's entry survives in the sum. Work fans out over a
// worker pool pulling shard indices off a shared channel, grounded on the
// Pro7ech-lattigo PIR example's task-channel/WaitGroup respond loop.
func Respond(r *ring.Ring, db pirdb.Database, q *Query, params rlwe.ParameterSet) ([]*rlwe.Ciphertext, error) {
	cfg := db.Config()
	if q.ParamsVersion != params.Version {
		return nil, ErrInvalidQuery
	}
	if q.NumShards != cfg.NumShards || len(q.Packing) != cfg.NumShards {
		return nil, ErrInvalidQuery
	}

	type shardResult struct {
		polys []*rlwe.Ciphertext
	}

	jobs := make(chan int, cfg.NumShards)
	results := make(chan shardResult, cfg.NumShards)
	errCh := make(chan error, 1)

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > cfg.NumShards {
		numWorkers = cfg.NumShards
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				polys, err := db.GetShard(i)
				if err != nil {
					select {
					case errCh <- err:
					default:
					}
					continue
				}
				local := make([]*rlwe.Ciphertext, cfg.PolysPerShard)
				for k := range local {
					local[k] = rlwe.Zero(r)
				}
				for k, plain := range polys {
					rlwe.MulPlainAndAdd(r, q.Packing[i], plain, local[k])
				}
				results <- shardResult{polys: local}
			}
		}()
	}

	for i := 0; i < cfg.NumShards; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	close(results)

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	acc := make([]*rlwe.Ciphertext, cfg.PolysPerShard)
	for k := range acc {
		acc[k] = rlwe.Zero(r)
	}
	for res := range results {
		for k := range acc {
			r.Add(acc[k].B, res.polys[k].B, acc[k].B)
			r.Add(acc[k].A, res.polys[k].A, acc[k].A)
		}
	}
	return acc, nil
}
