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
	"math/bits"

	"github.com/bravesasha/zkevm-circuits/ints"
)

const (
	huffMaxTableLog = 11
	huffMaxWeight   = 12
	huffWeightLog   = 6 // accuracy-log cap for compressed weight streams
)

type huffEntry struct {
	symbol uint8
	nbBits uint8
}

// huffTable is a canonical prefix-code decode table: the next tableLog bits
// of the stream, taken as an integer, index the matching symbol and its
// true code length.
type huffTable struct {
	log     uint8
	entries []huffEntry
}

// huffReadTree parses a prefix-code tree description: either direct 4-bit
// weights (first byte >= 128) or an FSE-compressed weight stream decoded
// with two interleaved states. It returns the decode table, the weight-
// stream decode table (when one was built) and the bytes consumed.
func huffReadTree(src []byte) (*huffTable, *FseTable, int, errorCode) {
	if len(src) == 0 {
		return nil, nil, 0, ecTruncatedInput
	}
	hdr := int(src[0])
	var weights []uint8
	var weightTab *FseTable
	n := 1
	if hdr >= 128 {
		numWeights := hdr - 127
		packed := (numWeights + 1) / 2
		if len(src) < 1+packed {
			return nil, nil, 0, ecTruncatedInput
		}
		for i := 0; i < numWeights; i++ {
			v := src[1+i/2]
			if i&1 == 0 {
				v >>= 4
			} else {
				v &= 0x0f
			}
			weights = append(weights, v)
		}
		n += packed
	} else {
		if len(src) < 1+hdr {
			return nil, nil, 0, ecTruncatedInput
		}
		var ec errorCode
		weights, weightTab, ec = huffDecodeWeights(src[1 : 1+hdr])
		if ec != ecOK {
			return nil, nil, 0, ec
		}
		n += hdr
	}
	tab, ec := huffBuildTable(weights)
	if ec != ecOK {
		return nil, nil, 0, ec
	}
	return tab, weightTab, n, ecOK
}

// huffDecodeWeights runs the two-state FSE decode over a compressed weight
// stream. The states alternate; when an advance overruns the backward
// bitstream, the other state flushes its current symbol and the decode
// stops.
func huffDecodeWeights(src []byte) ([]uint8, *FseTable, errorCode) {
	norm, log, n, ec := fseReadDistribution(src, 255, huffWeightLog)
	if ec != ecOK {
		return nil, nil, ec
	}
	tab, ec := fseBuildTable(norm, log)
	if ec != ecOK {
		return nil, nil, ec
	}
	var br reverseBitReader
	if ec := br.init(src[n:]); ec != ecOK {
		return nil, nil, ec
	}
	s1 := fseState{table: tab}
	s2 := fseState{table: tab}
	s1.init(&br)
	s2.init(&br)
	if br.overread() {
		return nil, nil, ecHuffmanDecodeFailure
	}
	var weights []uint8
	for {
		if len(weights) >= 254 {
			return nil, nil, ecHuffmanDecodeFailure
		}
		weights = append(weights, s1.next(&br))
		if br.overread() {
			weights = append(weights, s2.symbol())
			break
		}
		weights = append(weights, s2.next(&br))
		if br.overread() {
			weights = append(weights, s1.symbol())
			break
		}
	}
	return weights, tab, ecOK
}

// huffBuildTable derives the decode table from the explicit weights plus
// the implied last weight that completes the power-of-two total. Symbols
// are ranked lowest weight first, reproducing the canonical code order.
func huffBuildTable(weights []uint8) (*huffTable, errorCode) {
	if len(weights) < 1 {
		return nil, ecHuffmanDecodeFailure
	}
	weightTotal := uint32(0)
	for _, w := range weights {
		if w > huffMaxWeight {
			return nil, ecHuffmanDecodeFailure
		}
		if w > 0 {
			weightTotal += 1 << (w - 1)
		}
	}
	if weightTotal == 0 {
		return nil, ecHuffmanDecodeFailure
	}
	log := uint8(bits.Len32(weightTotal))
	if log > huffMaxTableLog {
		return nil, ecHuffmanDecodeFailure
	}
	size := uint32(1) << log
	rest := size - weightTotal
	// the implied weight must itself be a power of two
	if rest == 0 || rest&(rest-1) != 0 {
		return nil, ecHuffmanDecodeFailure
	}
	weights = append(weights[:len(weights):len(weights)], uint8(bits.Len32(rest)))

	var rankStart [huffMaxWeight + 2]uint32
	{
		var rankCount [huffMaxWeight + 2]uint32
		for _, w := range weights {
			rankCount[w]++
		}
		next := uint32(0)
		for w := 1; w <= int(log); w++ {
			rankStart[w] = next
			next += rankCount[w] << (w - 1)
		}
		if next != size {
			return nil, ecHuffmanDecodeFailure
		}
	}

	entries := make([]huffEntry, size)
	for sym, w := range weights {
		if w == 0 {
			continue
		}
		e := huffEntry{symbol: uint8(sym), nbBits: log + 1 - w}
		run := uint32(1) << (w - 1)
		for i := rankStart[w]; i < rankStart[w]+run; i++ {
			entries[i] = e
		}
		rankStart[w] += run
	}
	return &huffTable{log: log, entries: entries}, ecOK
}

// decodeStream appends exactly want symbols decoded from one backward
// bitstream; the stream must be consumed down to its last bit.
func (t *huffTable) decodeStream(dst []byte, want int, src []byte) ([]byte, errorCode) {
	var br reverseBitReader
	if ec := br.init(src); ec != ecOK {
		return dst, ec
	}
	for i := 0; i < want; i++ {
		if br.remaining() <= 0 {
			return dst, ecHuffmanDecodeFailure
		}
		e := t.entries[br.peekBits(int(t.log))]
		br.skipBits(int(e.nbBits))
		dst = append(dst, e.symbol)
	}
	if br.remaining() != 0 {
		return dst, ecHuffmanDecodeFailure
	}
	return dst, ecOK
}

// decodeLiterals decodes the regenerated literals from the stream area of
// an entropy-coded literals section: a single stream, or four streams
// behind a 6-byte jump table with the first three sizes explicit.
func (t *huffTable) decodeLiterals(dst []byte, regen int, fourStreams bool, src []byte) ([]byte, errorCode) {
	if !fourStreams {
		return t.decodeStream(dst, regen, src)
	}
	if len(src) < 6 {
		return dst, ecTruncatedInput
	}
	sizes := [4]int{
		int(src[0]) | int(src[1])<<8,
		int(src[2]) | int(src[3])<<8,
		int(src[4]) | int(src[5])<<8,
	}
	sizes[3] = len(src) - 6 - sizes[0] - sizes[1] - sizes[2]
	if sizes[3] <= 0 {
		return dst, ecTruncatedInput
	}
	want := ints.ChunkCount(regen, 4)
	last := regen - 3*want
	if last < 0 {
		return dst, ecHuffmanDecodeFailure
	}
	off := 6
	var ec errorCode
	for i := 0; i < 4; i++ {
		w := want
		if i == 3 {
			w = last
		}
		dst, ec = t.decodeStream(dst, w, src[off:off+sizes[i]])
		if ec != ecOK {
			return dst, ec
		}
		off += sizes[i]
	}
	return dst, ecOK
}
