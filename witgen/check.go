// Copyright 2023 Sneller, Inc.
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

package witgen

import (
	"fmt"
)

// CheckRows validates the structural contract a trace consumer relies on
// without re-deriving the decode:
//
//   - the first row is real and belongs to block 1;
//   - byte indices are contiguous and strictly increasing from 1;
//   - the block index never decreases, advances by exactly 1, and only at
//     the first payload row of a block (its literals header, or the first
//     payload byte of a headerless raw or run-length block);
//   - padding is a single terminal suffix replicating the last real
//     block index and running regenerated size;
//   - per block, the literals header re-decodes consistently: the running
//     regenerated size advances by the declared amount on the header's
//     last byte, and a raw literals section owns exactly that many
//     literal-byte rows.
//
// Any violation is reported with the offending row position.
func CheckRows(rows []Row) error {
	if len(rows) == 0 {
		return fmt.Errorf("empty trace")
	}
	if rows[0].IsPadding {
		return fmt.Errorf("row 0: trace starts with padding")
	}
	if rows[0].BlockIdx != 1 {
		return fmt.Errorf("row 0: block index %d, want 1", rows[0].BlockIdx)
	}
	if rows[0].ByteIdx != 1 {
		return fmt.Errorf("row 0: byte index %d, want 1", rows[0].ByteIdx)
	}

	type blockHdr struct {
		bytes       []byte
		regenBefore int
		regenAfter  int
		rawRows     int
	}
	blocks := make(map[int]*blockHdr)
	hdr := func(idx int) *blockHdr {
		b := blocks[idx]
		if b == nil {
			b = &blockHdr{}
			blocks[idx] = b
		}
		return b
	}

	padding := false
	prev := rows[0]
	note := func(r Row, prevRegen int) {
		switch r.Tag {
		case TagLiteralsHeader:
			b := hdr(r.BlockIdx)
			if len(b.bytes) == 0 {
				b.regenBefore = prevRegen
			}
			b.bytes = append(b.bytes, r.Value)
			b.regenAfter = r.RegenSoFar
		case TagLiteralsRawBytes:
			hdr(r.BlockIdx).rawRows++
		}
	}
	note(rows[0], 0)

	for i := 1; i < len(rows); i++ {
		r := rows[i]
		if r.ByteIdx != prev.ByteIdx+1 {
			return fmt.Errorf("row %d: byte index %d after %d", i, r.ByteIdx, prev.ByteIdx)
		}
		if padding && !r.IsPadding {
			return fmt.Errorf("row %d: padding reverts to real content", i)
		}
		if r.IsPadding {
			padding = true
			if r.BlockIdx != prev.BlockIdx {
				return fmt.Errorf("row %d: padding changes block index %d -> %d", i, prev.BlockIdx, r.BlockIdx)
			}
			if r.RegenSoFar != prev.RegenSoFar {
				return fmt.Errorf("row %d: padding changes regenerated size", i)
			}
		} else {
			switch d := r.BlockIdx - prev.BlockIdx; {
			case d < 0:
				return fmt.Errorf("row %d: block index decreases %d -> %d", i, prev.BlockIdx, r.BlockIdx)
			case d > 1:
				return fmt.Errorf("row %d: block index skips %d -> %d", i, prev.BlockIdx, r.BlockIdx)
			case d == 1:
				switch r.Tag {
				case TagLiteralsHeader, TagLiteralsRawBytes, TagLiteralsRleByte:
				default:
					return fmt.Errorf("row %d: block %d starts on %v row", i, r.BlockIdx, r.Tag)
				}
			}
			if r.RegenSoFar < prev.RegenSoFar {
				return fmt.Errorf("row %d: regenerated size decreases", i)
			}
			note(r, prev.RegenSoFar)
		}
		prev = r
	}

	for idx, b := range blocks {
		if len(b.bytes) == 0 {
			// headerless raw or run-length block; nothing declared to check
			continue
		}
		h, ec := decodeLiteralsHeader(b.bytes)
		if ec != ecOK || h.HeaderSize != len(b.bytes) {
			return fmt.Errorf("block %d: literals header does not re-decode", idx)
		}
		if b.regenAfter-b.regenBefore != h.RegeneratedSize {
			return fmt.Errorf("block %d: regenerated size %d declared, running size advanced by %d",
				idx, h.RegeneratedSize, b.regenAfter-b.regenBefore)
		}
		if h.Kind == LiteralsRaw && b.rawRows != h.RegeneratedSize {
			return fmt.Errorf("block %d: %d raw literal rows, header declares %d",
				idx, b.rawRows, h.RegeneratedSize)
		}
	}
	return nil
}
