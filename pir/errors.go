// Package pir implements the query/response protocol on top of package
// pirdb's encoded database and package rlwe's ciphertexts: setup, query,
// query_seeded, respond and extract. It is grounded on the
// Pro7ech-lattigo PIR example's worker-pool respond loop and on the
// teacher's Ciphertext/Encryptor/Decryptor types.
package pir

import "errors"

// ErrIndexOutOfBounds is returned by Query when the requested entry index
// does not fall within [0, totalEntries).
var ErrIndexOutOfBounds = errors.New("pir: index out of bounds")

// ErrInvalidQuery is returned by Respond when a query's shape doesn't match
// the database it's being served against (wrong packing-ciphertext count,
// wrong parameter version).
var ErrInvalidQuery = errors.New("pir: invalid query")
