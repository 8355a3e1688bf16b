// GraphRec - Graph-Backed Media Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/graphrec

package engine

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// graphState is the gob-serialized engine state. The reverse adjacency is
// derived, so only the forward edges and genre tags are persisted.
type graphState struct {
	UserItems  map[int]map[int]int64
	ItemGenres map[int]int
}

// snapshotHeader describes the persisted state.
type snapshotHeader struct {
	// Checksum is the SHA-256 of the uncompressed gob payload.
	Checksum string

	// SavedAt is when the snapshot was written.
	SavedAt time.Time

	// Users, Items, and Edges record graph size at save time.
	Users int
	Items int
	Edges int
}

// snapshotFile is the on-disk format: a single gob-encoded struct holding
// the header and the gzip-compressed state payload.
type snapshotFile struct {
	Header         snapshotHeader
	CompressedData []byte
}

// SaveModel serializes the full engine state to path. The payload is gob
// encoded, checksummed, and gzip compressed; LoadModel refuses payloads
// whose checksum no longer matches.
func (e *Engine) SaveModel(path string) error {
	e.mu.RLock()
	state := graphState{
		UserItems:  e.userItems,
		ItemGenres: e.itemGenres,
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	err := enc.Encode(state)

	header := snapshotHeader{
		SavedAt: time.Now().UTC(),
		Users:   len(e.userItems),
		Items:   e.itemCountLocked(),
		Edges:   e.edgeCountLocked(),
	}
	e.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("encode graph state: %w", err)
	}

	rawData := buf.Bytes()
	hash := sha256.Sum256(rawData)
	header.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return fmt.Errorf("compress graph state: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return fmt.Errorf("finalize compression: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // path comes from the operator-controlled data dir
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after a successful encode is not actionable

	fileEnc := gob.NewEncoder(f)
	if err := fileEnc.Encode(snapshotFile{
		Header:         header,
		CompressedData: compressed.Bytes(),
	}); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	e.logger.Debug().
		Int("users", header.Users).
		Int("items", header.Items).
		Int("edges", header.Edges).
		Int("compressed_bytes", compressed.Len()).
		Msg("graph snapshot written")

	return nil
}

// LoadModel replaces the engine state with the snapshot at path. The
// previous state is only discarded once the payload decompresses, passes
// its checksum, and decodes, so a corrupt snapshot leaves the engine
// untouched.
func (e *Engine) LoadModel(path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator-controlled data dir
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // close error after read is not actionable

	var sf snapshotFile
	fileDec := gob.NewDecoder(f)
	if err := fileDec.Decode(&sf); err != nil {
		return fmt.Errorf("read snapshot file: %w", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // close error after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return fmt.Errorf("read decompressed snapshot: %w", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Header.Checksum {
		return fmt.Errorf("snapshot checksum mismatch: expected %s, got %s", sf.Header.Checksum, checksum)
	}

	var state graphState
	dec := gob.NewDecoder(bytes.NewReader(rawData))
	if err := dec.Decode(&state); err != nil {
		return fmt.Errorf("decode graph state: %w", err)
	}

	if state.UserItems == nil {
		state.UserItems = make(map[int]map[int]int64)
	}
	if state.ItemGenres == nil {
		state.ItemGenres = make(map[int]int)
	}

	// Rebuild the reverse adjacency from the forward edges.
	itemUsers := make(map[int]map[int]struct{})
	for userID, items := range state.UserItems {
		for itemID := range items {
			users := itemUsers[itemID]
			if users == nil {
				users = make(map[int]struct{})
				itemUsers[itemID] = users
			}
			users[userID] = struct{}{}
		}
	}

	e.mu.Lock()
	e.userItems = state.UserItems
	e.itemGenres = state.ItemGenres
	e.itemUsers = itemUsers
	e.mu.Unlock()

	e.logger.Debug().
		Int("users", sf.Header.Users).
		Int("items", sf.Header.Items).
		Int("edges", sf.Header.Edges).
		Time("saved_at", sf.Header.SavedAt).
		Msg("graph snapshot loaded")

	return nil
}

// itemCountLocked counts item nodes. Callers must hold at least the
// read lock.
func (e *Engine) itemCountLocked() int {
	count := len(e.itemGenres)
	for itemID := range e.itemUsers {
		if _, tagged := e.itemGenres[itemID]; !tagged {
			count++
		}
	}
	return count
}
