// Package stateformat implements the on-disk layout of state.bin, the
// sorted binary file a chain-state extractor hands to the lane builder:
// a fixed 64-byte header followed by fixed-size storage entries sorted by
// tree key. It is grounded on the original implementation's
// inspire-core/src/state_format.rs (restored via original_source, since the
// distilled spec only gives the byte layout in prose) and on the teacher's
// plain encoding/binary + blake3 idiom rather than any serialization
// framework, matching how lattigo and the rest of the pack hand-roll their
// wire formats.
package stateformat

import (
	"encoding/binary"
	"fmt"
)

// Magic is the 4-byte state.bin file identifier.
var Magic = [4]byte{'P', 'I', 'R', '2'}

// HeaderSize is the fixed size of StateHeader's binary encoding.
const HeaderSize = 64

// StateHeader is state.bin's 64-byte header.
type StateHeader struct {
	Version     uint16
	EntrySize   uint16
	EntryCount  uint64
	BlockNumber uint64
	ChainID     uint64
	BlockHash   [32]byte
}

// ToBytes encodes h into exactly HeaderSize bytes, little-endian.
func (h StateHeader) ToBytes() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.EntrySize)
	binary.LittleEndian.PutUint64(buf[8:16], h.EntryCount)
	binary.LittleEndian.PutUint64(buf[16:24], h.BlockNumber)
	binary.LittleEndian.PutUint64(buf[24:32], h.ChainID)
	copy(buf[32:64], h.BlockHash[:])
	return buf
}

// StateHeaderFromBytes decodes a StateHeader from exactly HeaderSize bytes,
// rejecting a bad magic.
func StateHeaderFromBytes(buf []byte) (StateHeader, error) {
	if len(buf) != HeaderSize {
		return StateHeader{}, fmt.Errorf("stateformat: header is %d bytes, expected %d", len(buf), HeaderSize)
	}
	if string(buf[0:4]) != string(Magic[:]) {
		return StateHeader{}, fmt.Errorf("stateformat: bad magic %q", buf[0:4])
	}
	var h StateHeader
	h.Version = binary.LittleEndian.Uint16(buf[4:6])
	h.EntrySize = binary.LittleEndian.Uint16(buf[6:8])
	h.EntryCount = binary.LittleEndian.Uint64(buf[8:16])
	h.BlockNumber = binary.LittleEndian.Uint64(buf[16:24])
	h.ChainID = binary.LittleEndian.Uint64(buf[24:32])
	copy(h.BlockHash[:], buf[32:64])
	return h, nil
}
