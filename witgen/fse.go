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
)

// FseEntry is one state of a finite-state-entropy decode table: the symbol
// emitted from the state, the baseline of the next state and the number of
// raw bits appended to the baseline.
type FseEntry struct {
	Symbol   uint8
	Baseline uint16
	NumBits  uint8
}

// FseTable is a decode table of size 1<<AccuracyLog, indexed by state.
type FseTable struct {
	AccuracyLog uint8
	States      []FseEntry
}

// fseReadDistribution parses a normalized-distribution header from a
// forward LSB-first bitstream: a 4-bit accuracy-log field (+5), then one
// variable-width count per symbol, with 2-bit repeat flags after zero
// probabilities. It returns the per-symbol counts (-1 denotes a
// "less than one" probability), the accuracy log, and the number of whole
// bytes consumed.
func fseReadDistribution(src []byte, maxSymbol int, maxLog uint8) (norm []int16, log uint8, n int, ec errorCode) {
	if len(src) == 0 {
		return nil, 0, 0, ecTruncatedInput
	}
	br := forwardBitReader{data: src}
	log = uint8(br.readBits(4)) + 5
	if log > maxLog {
		return nil, 0, 0, ecMalformedHeader
	}
	tableSize := 1 << log
	remaining := tableSize + 1
	threshold := tableSize
	nbBits := int(log) + 1

	for remaining > 1 {
		if len(norm) > maxSymbol {
			return nil, 0, 0, ecMalformedHeader
		}
		max := 2*threshold - 1 - remaining
		var count int
		if small := br.readBits(nbBits - 1); small < max {
			count = small
		} else {
			// the wide encoding carries one more bit
			count = small | br.readBits(1)<<(nbBits-1)
			if count >= threshold {
				count -= max
			}
		}
		count-- // counts are stored +1; -1 encodes "less than one"
		if count < 0 {
			remaining -= -count
		} else {
			remaining -= count
		}
		if remaining < 1 {
			return nil, 0, 0, ecFseTableOverflow
		}
		norm = append(norm, int16(count))
		for remaining < threshold {
			nbBits--
			threshold >>= 1
		}
		if count == 0 && remaining > 1 {
			// a zero probability is followed by 2-bit repeat flags
			for {
				rep := br.readBits(2)
				for i := 0; i < rep; i++ {
					norm = append(norm, 0)
				}
				if len(norm) > maxSymbol+1 {
					return nil, 0, 0, ecMalformedHeader
				}
				if rep < 3 {
					break
				}
			}
		}
	}
	if remaining != 1 {
		return nil, 0, 0, ecFseTableOverflow
	}
	if br.overread() {
		return nil, 0, 0, ecTruncatedInput
	}
	return norm, log, br.bytesRead(), ecOK
}

// fseBuildTable spreads the normalized counts over a table of size
// 1<<log using the canonical stride placement and derives the per-state
// transition entries. The distribution must sum exactly to the table size,
// counting each -1 probability as one slot taken from the table's top.
func fseBuildTable(norm []int16, log uint8) (*FseTable, errorCode) {
	size := 1 << log
	symbols := make([]uint8, size)
	symbolNext := make([]uint16, len(norm))
	highThreshold := size - 1
	total := 0
	for s, p := range norm {
		if p == -1 {
			if highThreshold < 0 {
				return nil, ecFseTableOverflow
			}
			symbols[highThreshold] = uint8(s)
			highThreshold--
			symbolNext[s] = 1
			total++
		} else {
			symbolNext[s] = uint16(p)
			total += int(p)
		}
	}
	if total != size {
		return nil, ecFseTableOverflow
	}

	step := (size >> 1) + (size >> 3) + 3
	mask := size - 1
	pos := 0
	for s, p := range norm {
		for i := int16(0); i < p; i++ {
			symbols[pos] = uint8(s)
			for {
				pos = (pos + step) & mask
				if pos <= highThreshold {
					break
				}
			}
		}
	}
	if pos != 0 {
		return nil, ecFseTableOverflow
	}

	entries := make([]FseEntry, size)
	for i, s := range symbols {
		next := symbolNext[s]
		symbolNext[s]++
		nb := log - uint8(bits.Len16(next)-1)
		entries[i] = FseEntry{
			Symbol:   s,
			Baseline: next<<nb - uint16(size),
			NumBits:  nb,
		}
	}
	return &FseTable{AccuracyLog: log, States: entries}, ecOK
}

// fseRleTable is the single-state table produced by the run-length table
// mode: every use emits the same symbol and reads no bits.
func fseRleTable(symbol uint8) *FseTable {
	return &FseTable{
		AccuracyLog: 0,
		States:      []FseEntry{{Symbol: symbol}},
	}
}

// fseState walks a decode table against a backward bitstream.
type fseState struct {
	table *FseTable
	state uint16
}

func (s *fseState) init(br *reverseBitReader) {
	s.state = uint16(br.readBits(int(s.table.AccuracyLog)))
}

func (s *fseState) symbol() uint8 {
	return s.table.States[s.state].Symbol
}

func (s *fseState) advance(br *reverseBitReader) {
	e := s.table.States[s.state]
	s.state = e.Baseline + uint16(br.readBits(int(e.NumBits)))
}

// next emits the current symbol and advances; used by the interleaved
// two-state decode of prefix-code weights.
func (s *fseState) next(br *reverseBitReader) uint8 {
	sym := s.symbol()
	s.advance(br)
	return sym
}

func mustFseTable(norm []int16, log uint8) *FseTable {
	t, ec := fseBuildTable(norm, log)
	if ec != ecOK {
		panic(errs[ec])
	}
	return t
}

// Predefined distributions for the three sequence symbol classes.
var (
	predefinedLitLen = mustFseTable([]int16{
		4, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1,
		2, 2, 2, 2, 2, 2, 2, 2, 2, 3, 2, 1, 1, 1, 1, 1,
		-1, -1, -1, -1,
	}, 6)
	predefinedMatchLen = mustFseTable([]int16{
		1, 4, 3, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, -1,
		-1, -1, -1, -1, -1,
	}, 6)
	predefinedOffset = mustFseTable([]int16{
		1, 1, 1, 1, 1, 1, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, 1, 1, 1, -1, -1, -1, -1, -1,
	}, 5)
)
