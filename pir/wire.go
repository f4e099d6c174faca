package pir

import (
	"encoding/binary"
	"fmt"

	"github.com/statepir/inspire/ring"
	"github.com/statepir/inspire/rlwe"
)

// Wire formats for the server package's HTTP handlers. The binary layout is
// deliberately flat (no length-prefixed framing beyond what's needed to
// round-trip a variable shard count): a little-endian uint16 params
// version, a little-endian uint32 shard count, then each ciphertext as two
// N-coefficient uint64 arrays (B then A), N taken from the ring the caller
// supplies on decode.

// EncodePoly writes p's N coefficients as little-endian uint64s.
func EncodePoly(p *ring.Poly) []byte {
	buf := make([]byte, len(p.Coeffs)*8)
	for i, c := range p.Coeffs {
		binary.LittleEndian.PutUint64(buf[i*8:], c)
	}
	return buf
}

// DecodePoly reads n little-endian uint64 coefficients from buf.
func DecodePoly(buf []byte, n int) (*ring.Poly, error) {
	if len(buf) != n*8 {
		return nil, fmt.Errorf("pir: poly buffer has %d bytes, expected %d", len(buf), n*8)
	}
	p := &ring.Poly{Coeffs: make([]uint64, n)}
	for i := range p.Coeffs {
		p.Coeffs[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	return p, nil
}

func encodeCiphertext(ct *rlwe.Ciphertext) []byte {
	b := EncodePoly(ct.B)
	a := EncodePoly(ct.A)
	return append(b, a...)
}

func decodeCiphertext(buf []byte, n int) (*rlwe.Ciphertext, error) {
	if len(buf) != 2*n*8 {
		return nil, fmt.Errorf("pir: ciphertext buffer has %d bytes, expected %d", len(buf), 2*n*8)
	}
	b, err := DecodePoly(buf[:n*8], n)
	if err != nil {
		return nil, err
	}
	a, err := DecodePoly(buf[n*8:], n)
	if err != nil {
		return nil, err
	}
	return &rlwe.Ciphertext{B: b, A: a}, nil
}

// EncodeQuery serializes q to the binary wire format POST /query/{lane}/binary
// accepts.
func EncodeQuery(q *Query, n int) []byte {
	header := make([]byte, 6)
	binary.LittleEndian.PutUint16(header[0:2], q.ParamsVersion)
	binary.LittleEndian.PutUint32(header[2:6], uint32(q.NumShards))

	out := header
	for _, ct := range q.Packing {
		out = append(out, encodeCiphertext(ct)...)
	}
	return out
}

// DecodeQuery parses the binary wire format produced by EncodeQuery. n is
// the ring degree (coefficients per polynomial), known from the lane's
// compiled-in parameters.
func DecodeQuery(buf []byte, n int) (*Query, error) {
	if len(buf) < 6 {
		return nil, fmt.Errorf("pir: query buffer too short")
	}
	version := binary.LittleEndian.Uint16(buf[0:2])
	numShards := int(binary.LittleEndian.Uint32(buf[2:6]))

	ctSize := 2 * n * 8
	rest := buf[6:]
	if len(rest) != numShards*ctSize {
		return nil, fmt.Errorf("pir: query buffer has %d shard bytes, expected %d", len(rest), numShards*ctSize)
	}

	packing := make([]*rlwe.Ciphertext, numShards)
	for i := range packing {
		ct, err := decodeCiphertext(rest[i*ctSize:(i+1)*ctSize], n)
		if err != nil {
			return nil, err
		}
		packing[i] = ct
	}
	return &Query{NumShards: numShards, ParamsVersion: version, Packing: packing}, nil
}

// EncodeResponse serializes a Respond result (one ciphertext per polynomial
// slot of an entry) to bytes.
func EncodeResponse(response []*rlwe.Ciphertext) []byte {
	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(len(response)))
	out := header
	for _, ct := range response {
		out = append(out, encodeCiphertext(ct)...)
	}
	return out
}

// DecodeResponse parses the bytes produced by EncodeResponse.
func DecodeResponse(buf []byte, n int) ([]*rlwe.Ciphertext, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("pir: response buffer too short")
	}
	count := int(binary.LittleEndian.Uint32(buf[0:4]))
	ctSize := 2 * n * 8
	rest := buf[4:]
	if len(rest) != count*ctSize {
		return nil, fmt.Errorf("pir: response buffer has %d bytes, expected %d", len(rest), count*ctSize)
	}
	out := make([]*rlwe.Ciphertext, count)
	for i := range out {
		ct, err := decodeCiphertext(rest[i*ctSize:(i+1)*ctSize], n)
		if err != nil {
			return nil, err
		}
		out[i] = ct
	}
	return out, nil
}

// EncodeSeededQuery serializes a SeededQuery: only the B halves travel, the
// A halves being regenerated server-side from Seed via ExpandSeededQuery.
func EncodeSeededQuery(sq *SeededQuery) []byte {
	header := make([]byte, 6+len(sq.Seed)+4)
	binary.LittleEndian.PutUint16(header[0:2], sq.ParamsVersion)
	binary.LittleEndian.PutUint32(header[2:6], uint32(sq.NumShards))
	binary.LittleEndian.PutUint32(header[6:10], uint32(len(sq.Seed)))
	copy(header[10:], sq.Seed)

	out := header
	for _, p := range sq.B {
		out = append(out, EncodePoly(p)...)
	}
	return out
}

// DecodeSeededQuery parses the bytes produced by EncodeSeededQuery.
func DecodeSeededQuery(buf []byte, n int) (*SeededQuery, error) {
	if len(buf) < 10 {
		return nil, fmt.Errorf("pir: seeded query buffer too short")
	}
	version := binary.LittleEndian.Uint16(buf[0:2])
	numShards := int(binary.LittleEndian.Uint32(buf[2:6]))
	seedLen := int(binary.LittleEndian.Uint32(buf[6:10]))
	if len(buf) < 10+seedLen {
		return nil, fmt.Errorf("pir: seeded query buffer truncated seed")
	}
	seed := append([]byte(nil), buf[10:10+seedLen]...)

	rest := buf[10+seedLen:]
	if len(rest) != numShards*n*8 {
		return nil, fmt.Errorf("pir: seeded query buffer has %d bytes, expected %d", len(rest), numShards*n*8)
	}
	bs := make([]*ring.Poly, numShards)
	for i := range bs {
		p, err := DecodePoly(rest[i*n*8:(i+1)*n*8], n)
		if err != nil {
			return nil, err
		}
		bs[i] = p
	}
	return &SeededQuery{NumShards: numShards, ParamsVersion: version, Seed: seed, B: bs}, nil
}
