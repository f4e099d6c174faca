package stateformat

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ReadFile parses a state.bin file: a HeaderSize header followed by
// EntryCount entries of EntrySize bytes each.
func ReadFile(path string) (StateHeader, []StorageEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return StateHeader{}, nil, err
	}
	defer f.Close()
	return Read(bufio.NewReader(f))
}

// Read parses a state.bin stream from r.
func Read(r io.Reader) (StateHeader, []StorageEntry, error) {
	headerBuf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, headerBuf); err != nil {
		return StateHeader{}, nil, fmt.Errorf("stateformat: reading header: %w", err)
	}
	header, err := StateHeaderFromBytes(headerBuf)
	if err != nil {
		return StateHeader{}, nil, err
	}
	if header.EntrySize != EntrySize {
		return StateHeader{}, nil, fmt.Errorf("stateformat: header entry_size=%d, expected %d", header.EntrySize, EntrySize)
	}

	entries := make([]StorageEntry, header.EntryCount)
	entryBuf := make([]byte, EntrySize)
	for i := range entries {
		if _, err := io.ReadFull(r, entryBuf); err != nil {
			return StateHeader{}, nil, fmt.Errorf("stateformat: reading entry %d: %w", i, err)
		}
		e, err := StorageEntryFromBytes(entryBuf)
		if err != nil {
			return StateHeader{}, nil, err
		}
		entries[i] = e
	}
	return header, entries, nil
}

// WriteFile writes header and entries to path in state.bin layout.
func WriteFile(path string, header StateHeader, entries []StorageEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	header.EntryCount = uint64(len(entries))
	header.EntrySize = EntrySize
	if _, err := w.Write(header.ToBytes()); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := w.Write(e.ToBytes()); err != nil {
			return err
		}
	}
	return w.Flush()
}
