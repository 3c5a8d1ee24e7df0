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

// BlockType is the frame-level block type from the 3-byte block header.
type BlockType uint8

const (
	BlockRaw BlockType = iota
	BlockRLE
	BlockCompressed
	blockReserved
)

var blockTypeNames = [...]string{
	BlockRaw:        "Raw",
	BlockRLE:        "RunLength",
	BlockCompressed: "Compressed",
	blockReserved:   "Reserved",
}

func (t BlockType) String() string {
	if int(t) < len(blockTypeNames) {
		return blockTypeNames[t]
	}
	return "BlockType(?)"
}

// BlockInfo is the per-block metadata surfaced in the aggregate result.
// Size is the raw size field of the block header: payload bytes for raw
// and compressed blocks, the regenerated count for run-length blocks.
type BlockInfo struct {
	Idx         int
	Last        bool
	Type        BlockType
	Size        int
	DecodedSize int
}

// advanceBlock claims the next block index; payload rows emitted from here
// on carry it.
func (d *decoder) advanceBlock() {
	d.nBlocks++
	d.w.blockIdx = d.nBlocks
}

// decodeBlock decodes one block at the start of src and returns the bytes
// consumed and the last-block flag. The three header bytes are traced
// under the preceding block's index; the index advances when the payload
// begins, so a degenerate block with no payload rows claims no index of
// its own.
func (d *decoder) decodeBlock(src []byte) (int, bool, errorCode) {
	if len(src) < 3 {
		return 0, false, ecTruncatedInput
	}
	bh := uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
	last := bh&1 != 0
	typ := BlockType(bh >> 1 & 3)
	size := int(bh >> 3)

	d.w.emitAll(TagBlockHeader, src[:3])
	n := 3
	info := BlockInfo{Last: last, Type: typ, Size: size}

	switch typ {
	case BlockRaw:
		if len(src)-n < size {
			return n, last, ecTruncatedInput
		}
		if size > 0 {
			d.advanceBlock()
		}
		d.w.regen += size
		d.w.emitAll(TagLiteralsRawBytes, src[n:n+size])
		d.res.Literals = append(d.res.Literals, src[n:n+size]...)
		d.res.Output = append(d.res.Output, src[n:n+size]...)
		info.DecodedSize = size
		n += size

	case BlockRLE:
		if len(src)-n < 1 {
			return n, last, ecTruncatedInput
		}
		d.advanceBlock()
		d.w.regen += size
		d.w.emit(TagLiteralsRleByte, src[n])
		for i := 0; i < size; i++ {
			d.res.Literals = append(d.res.Literals, src[n])
			d.res.Output = append(d.res.Output, src[n])
		}
		info.DecodedSize = size
		n++

	case BlockCompressed:
		if len(src)-n < size {
			return n, last, ecTruncatedInput
		}
		d.advanceBlock()
		before := len(d.res.Output)
		if ec := d.decodeCompressedBlock(src[n : n+size]); ec != ecOK {
			return n, last, ec
		}
		info.DecodedSize = len(d.res.Output) - before
		n += size

	default:
		return n, last, ecUnsupportedBlockType
	}

	info.Idx = d.w.blockIdx
	d.res.Blocks = append(d.res.Blocks, info)
	return n, last, ecOK
}

// decodeCompressedBlock decodes the literals section and the sequences
// section of one compressed block, then replays the sequences.
func (d *decoder) decodeCompressedBlock(payload []byte) errorCode {
	before := len(d.res.Literals)
	lits, n, _, ec := d.decodeLiteralsSection(payload, d.res.Literals)
	d.res.Literals = lits
	if ec != ecOK {
		return ec
	}
	seqs, info, ec := d.decodeSequencesSection(payload[n:])
	if ec != ecOK {
		return ec
	}
	d.res.SequenceInfos = append(d.res.SequenceInfos, info)
	d.res.Sequences = append(d.res.Sequences, seqs...)
	return d.executeSequences(seqs, d.res.Literals[before:])
}
