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

// SymbolClass identifies which symbol alphabet an FSE table decodes.
type SymbolClass uint8

const (
	ClassLiteralLength SymbolClass = iota
	ClassOffset
	ClassMatchLength
	ClassHuffmanWeight
)

var classNames = [...]string{
	ClassLiteralLength: "LiteralLength",
	ClassOffset:        "Offset",
	ClassMatchLength:   "MatchLength",
	ClassHuffmanWeight: "HuffmanWeight",
}

func (c SymbolClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "SymbolClass(?)"
}

// TableMode selects how a symbol class obtains its decode table.
type TableMode uint8

const (
	ModePredefined TableMode = iota
	ModeRLE
	ModeFSE
	ModeRepeat
)

// SequenceInfo is the decoded metadata of one block's sequences section.
type SequenceInfo struct {
	BlockIdx     int
	NumSequences int
	// Modes are the table modes for the literal-length, offset and
	// match-length classes, in header order.
	Modes [3]TableMode
}

// Sequence is one (literal_length, match_length, offset) instruction.
type Sequence struct {
	LiteralLength int
	MatchLength   int
	Offset        int
}

const (
	maxLitLenSymbol   = 35
	maxMatchLenSymbol = 52
	maxOffsetSymbol   = 31

	maxLitLenLog   = 9
	maxMatchLenLog = 9
	maxOffsetLog   = 8
)

// Value conversion for decoded codes: value = baseline + extra raw bits.
var (
	litLenBaselines = [maxLitLenSymbol + 1]int{
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
		16, 18, 20, 22, 24, 28, 32, 40, 48, 64, 128, 256, 512, 1024, 2048, 4096,
		8192, 16384, 32768, 65536,
	}
	litLenExtraBits = [maxLitLenSymbol + 1]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 2, 2, 3, 3, 4, 6, 7, 8, 9, 10, 11, 12,
		13, 14, 15, 16,
	}
	matchLenBaselines = [maxMatchLenSymbol + 1]int{
		3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18,
		19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 33, 34,
		35, 37, 39, 41, 43, 47, 51, 59, 67, 83, 99, 131, 259, 515, 1027, 2051,
		4099, 8195, 16387, 32771, 65539,
	}
	matchLenExtraBits = [maxMatchLenSymbol + 1]uint8{
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
		1, 1, 1, 1, 2, 2, 3, 3, 4, 4, 5, 7, 8, 9, 10, 11,
		12, 13, 14, 15, 16,
	}
)

// seqTables carries the decode tables in effect for a frame; repeat mode
// reuses them across blocks.
type seqTables struct {
	litLen   *FseTable
	offset   *FseTable
	matchLen *FseTable
}

// decodeSequenceCount reads the 1-3 byte sequence count.
func decodeSequenceCount(src []byte) (count, n int, ec errorCode) {
	if len(src) == 0 {
		return 0, 0, ecTruncatedInput
	}
	b0 := int(src[0])
	switch {
	case b0 < 128:
		return b0, 1, ecOK
	case b0 < 255:
		if len(src) < 2 {
			return 0, 0, ecTruncatedInput
		}
		return (b0-128)<<8 | int(src[1]), 2, ecOK
	default:
		if len(src) < 3 {
			return 0, 0, ecTruncatedInput
		}
		return (int(src[1]) | int(src[2])<<8) + 0x7f00, 3, ecOK
	}
}

// classTable materializes the decode table for one symbol class according
// to its mode, consuming table-description bytes where the mode requires
// them and recording freshly built tables into the aggregate result.
func (d *decoder) classTable(class SymbolClass, mode TableMode, src []byte, prev *FseTable) (*FseTable, int, errorCode) {
	var maxSym int
	var maxLog uint8
	var predefined *FseTable
	switch class {
	case ClassLiteralLength:
		maxSym, maxLog, predefined = maxLitLenSymbol, maxLitLenLog, predefinedLitLen
	case ClassOffset:
		maxSym, maxLog, predefined = maxOffsetSymbol, maxOffsetLog, predefinedOffset
	case ClassMatchLength:
		maxSym, maxLog, predefined = maxMatchLenSymbol, maxMatchLenLog, predefinedMatchLen
	}
	switch mode {
	case ModePredefined:
		return predefined, 0, ecOK
	case ModeRLE:
		if len(src) == 0 {
			return nil, 0, ecTruncatedInput
		}
		if int(src[0]) > maxSym {
			return nil, 0, ecMalformedHeader
		}
		d.w.emit(TagFseTable, src[0])
		t := fseRleTable(src[0])
		d.recordTable(class, t)
		return t, 1, ecOK
	case ModeFSE:
		norm, log, n, ec := fseReadDistribution(src, maxSym, maxLog)
		if ec != ecOK {
			return nil, 0, ec
		}
		t, ec := fseBuildTable(norm, log)
		if ec != ecOK {
			return nil, 0, ec
		}
		d.w.emitAll(TagFseTable, src[:n])
		d.recordTable(class, t)
		return t, n, ecOK
	default: // ModeRepeat
		if prev == nil {
			return nil, 0, ecMalformedHeader
		}
		return prev, 0, ecOK
	}
}

// decodeSequencesSection decodes a block's sequences section: the count,
// the per-class compression-mode byte, the three decode tables and the
// interleaved backward bitstream. Repeat offsets persist across blocks of
// a frame and are resolved here, so the returned sequences carry actual
// offsets.
func (d *decoder) decodeSequencesSection(src []byte) ([]Sequence, SequenceInfo, errorCode) {
	info := SequenceInfo{BlockIdx: d.w.blockIdx}
	count, n, ec := decodeSequenceCount(src)
	if ec != ecOK {
		return nil, info, ec
	}
	info.NumSequences = count
	d.w.emitAll(TagSequencesHeader, src[:n])
	src = src[n:]
	if count == 0 {
		// literals-only block; no mode byte, no bitstream
		if len(src) != 0 {
			return nil, info, ecMalformedHeader
		}
		return nil, info, ecOK
	}

	if len(src) == 0 {
		return nil, info, ecTruncatedInput
	}
	modes := src[0]
	if modes&3 != 0 {
		// reserved mode bits
		return nil, info, ecMalformedHeader
	}
	info.Modes = [3]TableMode{
		TableMode(modes >> 6 & 3),
		TableMode(modes >> 4 & 3),
		TableMode(modes >> 2 & 3),
	}
	d.w.emit(TagSequencesHeader, modes)
	src = src[1:]

	var used int
	d.tables.litLen, used, ec = d.classTable(ClassLiteralLength, info.Modes[0], src, d.tables.litLen)
	if ec != ecOK {
		return nil, info, ec
	}
	src = src[used:]
	d.tables.offset, used, ec = d.classTable(ClassOffset, info.Modes[1], src, d.tables.offset)
	if ec != ecOK {
		return nil, info, ec
	}
	src = src[used:]
	d.tables.matchLen, used, ec = d.classTable(ClassMatchLength, info.Modes[2], src, d.tables.matchLen)
	if ec != ecOK {
		return nil, info, ec
	}
	src = src[used:]

	d.w.emitAll(TagSequencesData, src)
	seqs, ec := d.decodeSequenceBitstream(src, count)
	return seqs, info, ec
}

// decodeSequenceBitstream walks the single backward bitstream shared by
// the three symbol classes. States initialize in literal-length, offset,
// match-length order; each sequence reads its extra value bits in offset,
// match-length, literal-length order; states update in literal-length,
// match-length, offset order. The direction and orderings are fixed by the
// format and must not be rearranged.
func (d *decoder) decodeSequenceBitstream(src []byte, count int) ([]Sequence, errorCode) {
	var br reverseBitReader
	if ec := br.init(src); ec != ecOK {
		return nil, ec
	}
	llS := fseState{table: d.tables.litLen}
	ofS := fseState{table: d.tables.offset}
	mlS := fseState{table: d.tables.matchLen}
	llS.init(&br)
	ofS.init(&br)
	mlS.init(&br)
	if br.overread() {
		return nil, ecTruncatedInput
	}

	seqs := make([]Sequence, 0, count)
	for i := 0; i < count; i++ {
		ofCode := ofS.symbol()
		if int(ofCode) > maxOffsetSymbol {
			return nil, ecMalformedHeader
		}
		ofValue := 1<<ofCode + br.readBits(int(ofCode))

		mlCode := mlS.symbol()
		if int(mlCode) > maxMatchLenSymbol {
			return nil, ecMalformedHeader
		}
		ml := matchLenBaselines[mlCode] + br.readBits(int(matchLenExtraBits[mlCode]))

		llCode := llS.symbol()
		if int(llCode) > maxLitLenSymbol {
			return nil, ecMalformedHeader
		}
		ll := litLenBaselines[llCode] + br.readBits(int(litLenExtraBits[llCode]))

		offset, ec := d.resolveOffset(ofValue, ll)
		if ec != ecOK {
			return nil, ec
		}
		seqs = append(seqs, Sequence{LiteralLength: ll, MatchLength: ml, Offset: offset})

		if i < count-1 {
			llS.advance(&br)
			mlS.advance(&br)
			ofS.advance(&br)
		}
		if br.overread() {
			return nil, ecTruncatedInput
		}
	}
	if br.remaining() != 0 {
		return nil, ecMalformedHeader
	}
	return seqs, ecOK
}

// resolveOffset converts a decoded offset value into an actual offset,
// maintaining the frame's three repeat offsets. Values above 3 are literal
// offsets; 1-3 select a repeat offset, shifted by one when the sequence
// has no literals, with value 3 (shifted) meaning repeat-offset-1 minus 1.
func (d *decoder) resolveOffset(ofValue, litLen int) (int, errorCode) {
	prev := &d.repeatOffsets
	if ofValue > 3 {
		offset := ofValue - 3
		prev[2], prev[1], prev[0] = prev[1], prev[0], offset
		return offset, ecOK
	}
	idx := ofValue
	if litLen == 0 {
		idx++
	}
	switch idx {
	case 1:
		return prev[0], ecOK
	case 2:
		offset := prev[1]
		prev[1], prev[0] = prev[0], offset
		return offset, ecOK
	case 3:
		offset := prev[2]
		prev[2], prev[1], prev[0] = prev[1], prev[0], offset
		return offset, ecOK
	default: // 4: repeat-offset-1 minus one
		offset := prev[0] - 1
		if offset == 0 {
			return 0, ecCorruptedOffset
		}
		prev[2], prev[1], prev[0] = prev[1], prev[0], offset
		return offset, ecOK
	}
}
