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

// Tag names the decode role of a single consumed input byte.
type Tag uint8

const (
	// TagNull marks padding rows appended beyond the real trace.
	TagNull Tag = iota
	// TagFrameHeader covers the magic number, the frame header descriptor
	// and the window descriptor.
	TagFrameHeader
	// TagFrameContentSize covers the declared decompressed size field.
	TagFrameContentSize
	// TagBlockHeader covers the 3-byte block header.
	TagBlockHeader
	// TagLiteralsHeader covers the 1-5 byte literals section header.
	TagLiteralsHeader
	// TagLiteralsRawBytes covers literal bytes stored verbatim, either in a
	// raw block or in the raw literals section of a compressed block.
	TagLiteralsRawBytes
	// TagLiteralsRleByte covers the single byte of a run-length block or
	// run-length literals section.
	TagLiteralsRleByte
	// TagHuffmanTree covers the prefix-code tree description of an
	// entropy-coded literals section.
	TagHuffmanTree
	// TagLiteralsStream covers the entropy-coded literal stream bytes,
	// including the 4-stream jump table.
	TagLiteralsStream
	// TagSequencesHeader covers the sequence count and the per-class
	// compression-mode byte.
	TagSequencesHeader
	// TagFseTable covers normalized-distribution table descriptions and
	// run-length table symbols in the sequences section.
	TagFseTable
	// TagSequencesData covers the interleaved sequence bitstream.
	TagSequencesData
	// TagChecksum covers the optional content checksum after the last block.
	TagChecksum
)

var tagNames = [...]string{
	TagNull:             "Null",
	TagFrameHeader:      "FrameHeader",
	TagFrameContentSize: "FrameContentSize",
	TagBlockHeader:      "BlockHeader",
	TagLiteralsHeader:   "LiteralsHeader",
	TagLiteralsRawBytes: "LiteralsRawBytes",
	TagLiteralsRleByte:  "LiteralsRleByte",
	TagHuffmanTree:      "HuffmanTree",
	TagLiteralsStream:   "LiteralsStream",
	TagSequencesHeader:  "SequencesHeader",
	TagFseTable:         "FseTable",
	TagSequencesData:    "SequencesData",
	TagChecksum:         "Checksum",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(?)"
}

// Row binds one consumed input byte to its decode role and the bookkeeping
// the downstream consumer relies on. ByteIdx is 1-based and strictly
// increasing over the whole trace; BlockIdx is 1-based and global across
// all frames of the input.
type Row struct {
	Tag        Tag
	BlockIdx   int
	ByteIdx    int
	Value      byte
	RegenSoFar int // cumulative regenerated size declared so far
	IsPadding  bool
}

// rowWriter appends one row per consumed byte. The block index starts at 1
// and is bumped by the caller when a block's payload begins, so the rows of
// a block header carry the index of the preceding block.
type rowWriter struct {
	rows     []Row
	byteIdx  int
	blockIdx int
	regen    int
}

func newRowWriter() *rowWriter {
	return &rowWriter{blockIdx: 1}
}

func (w *rowWriter) emit(tag Tag, v byte) {
	w.byteIdx++
	w.rows = append(w.rows, Row{
		Tag:        tag,
		BlockIdx:   w.blockIdx,
		ByteIdx:    w.byteIdx,
		Value:      v,
		RegenSoFar: w.regen,
	})
}

func (w *rowWriter) emitAll(tag Tag, data []byte) {
	for _, v := range data {
		w.emit(tag, v)
	}
}

// emitHeader emits the bytes of a literals header; the running regenerated
// size is finalized on the header's last byte.
func (w *rowWriter) emitHeader(data []byte, regen int) {
	w.emitAll(TagLiteralsHeader, data[:len(data)-1])
	w.regen += regen
	w.emit(TagLiteralsHeader, data[len(data)-1])
}
