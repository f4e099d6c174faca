package index

import (
	"encoding/binary"
	"fmt"
	"os"
)

// StandardRanges is the fixed set of block-count windows the range-delta
// file maintains, matching spec.md §8 scenario 4 exactly.
var StandardRanges = []uint32{1, 10, 100, 1000, 10000}

// RangeDeltaHeaderSize is the fixed header size of a range-delta file.
const RangeDeltaHeaderSize = 64

// directoryEntrySize is the encoded size of one directory record:
// blocks_covered, byte_offset, byte_size, entry_count, each a u32.
const directoryEntrySize = 16

// RangeDirectoryEntry describes one range's payload location within the
// file.
type RangeDirectoryEntry struct {
	BlocksCovered uint32
	ByteOffset    uint32
	ByteSize      uint32
	EntryCount    uint32
}

// RangeDeltaFile is the in-memory representation of the range-delta sync
// file: a header, a directory of ranges, and the pre-merged BucketDelta
// payload bytes for each range.
type RangeDeltaFile struct {
	Version      uint16
	CurrentBlock uint64
	Directory    []RangeDirectoryEntry
	Payloads     [][]byte // Payloads[i] corresponds to Directory[i]
}

// NewRangeDeltaFile lays out payloads (one pre-encoded BucketDelta per
// range, same order as StandardRanges) into a RangeDeltaFile, computing
// directory offsets.
func NewRangeDeltaFile(version uint16, currentBlock uint64, payloads [][]byte, entryCounts []uint32) (*RangeDeltaFile, error) {
	if len(payloads) != len(StandardRanges) || len(entryCounts) != len(StandardRanges) {
		return nil, fmt.Errorf("index: expected %d ranges, got %d payloads", len(StandardRanges), len(payloads))
	}
	dirBytes := uint32(RangeDeltaHeaderSize + len(StandardRanges)*directoryEntrySize)
	dir := make([]RangeDirectoryEntry, len(StandardRanges))
	offset := dirBytes
	for i, blocks := range StandardRanges {
		dir[i] = RangeDirectoryEntry{
			BlocksCovered: blocks,
			ByteOffset:    offset,
			ByteSize:      uint32(len(payloads[i])),
			EntryCount:    entryCounts[i],
		}
		offset += uint32(len(payloads[i]))
	}
	return &RangeDeltaFile{
		Version:      version,
		CurrentBlock: currentBlock,
		Directory:    dir,
		Payloads:     payloads,
	}, nil
}

// SelectRange picks the smallest directory range whose BlocksCovered is at
// least delta, returning its index, or -1 if delta is zero (no range
// needed) or exceeds every range's coverage (client must refetch the full
// index). Directory entries are assumed sorted ascending by BlocksCovered,
// true of StandardRanges.
func SelectRange(directory []RangeDirectoryEntry, delta uint64) int {
	if delta == 0 {
		return -1
	}
	for i, e := range directory {
		if uint64(e.BlocksCovered) >= delta {
			return i
		}
	}
	return -1
}

// WriteFile serializes f to path: header, directory, then payloads
// back-to-back at the offsets recorded in the directory.
func (f *RangeDeltaFile) WriteFile(path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	header := make([]byte, RangeDeltaHeaderSize)
	binary.LittleEndian.PutUint16(header[0:2], f.Version)
	binary.LittleEndian.PutUint64(header[2:10], f.CurrentBlock)
	binary.LittleEndian.PutUint32(header[10:14], uint32(len(f.Directory)))
	if _, err := out.Write(header); err != nil {
		return err
	}

	for _, e := range f.Directory {
		buf := make([]byte, directoryEntrySize)
		binary.LittleEndian.PutUint32(buf[0:4], e.BlocksCovered)
		binary.LittleEndian.PutUint32(buf[4:8], e.ByteOffset)
		binary.LittleEndian.PutUint32(buf[8:12], e.ByteSize)
		binary.LittleEndian.PutUint32(buf[12:16], e.EntryCount)
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}

	for _, p := range f.Payloads {
		if _, err := out.Write(p); err != nil {
			return err
		}
	}
	return nil
}

// ReadRangeDeltaFile reads the whole range-delta file, parses its header and
// directory, and returns each directory entry's payload bytes in Payloads.
// (Remote clients fetch a single payload via an HTTP range request against
// ByteOffset/ByteSize instead.)
func ReadRangeDeltaFile(path string) (*RangeDeltaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < RangeDeltaHeaderSize {
		return nil, fmt.Errorf("index: range-delta file too short")
	}
	version := binary.LittleEndian.Uint16(data[0:2])
	currentBlock := binary.LittleEndian.Uint64(data[2:10])
	numRanges := binary.LittleEndian.Uint32(data[10:14])

	dirStart := RangeDeltaHeaderSize
	dirEnd := dirStart + int(numRanges)*directoryEntrySize
	if len(data) < dirEnd {
		return nil, fmt.Errorf("index: range-delta directory truncated")
	}

	dir := make([]RangeDirectoryEntry, numRanges)
	payloads := make([][]byte, numRanges)
	off := dirStart
	for i := range dir {
		e := RangeDirectoryEntry{
			BlocksCovered: binary.LittleEndian.Uint32(data[off : off+4]),
			ByteOffset:    binary.LittleEndian.Uint32(data[off+4 : off+8]),
			ByteSize:      binary.LittleEndian.Uint32(data[off+8 : off+12]),
			EntryCount:    binary.LittleEndian.Uint32(data[off+12 : off+16]),
		}
		dir[i] = e
		off += directoryEntrySize

		if int(e.ByteOffset+e.ByteSize) > len(data) {
			return nil, fmt.Errorf("index: range-delta payload %d out of bounds", i)
		}
		payloads[i] = data[e.ByteOffset : e.ByteOffset+e.ByteSize]
	}

	return &RangeDeltaFile{Version: version, CurrentBlock: currentBlock, Directory: dir, Payloads: payloads}, nil
}
