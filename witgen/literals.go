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

// LiteralsKind is the storage form of a literals section.
type LiteralsKind uint8

const (
	LiteralsRaw LiteralsKind = iota
	LiteralsRLE
	LiteralsCompressed
	LiteralsTreeless
)

var literalsKindNames = [...]string{
	LiteralsRaw:        "Raw",
	LiteralsRLE:        "RunLength",
	LiteralsCompressed: "Compressed",
	LiteralsTreeless:   "Treeless",
}

func (k LiteralsKind) String() string {
	if int(k) < len(literalsKindNames) {
		return literalsKindNames[k]
	}
	return "LiteralsKind(?)"
}

// LiteralsHeader is the decoded 1-5 byte literals section header.
type LiteralsHeader struct {
	Kind            LiteralsKind
	SizeFormat      uint8
	RegeneratedSize int
	CompressedSize  int // meaningful for Compressed and Treeless kinds
	FourStreams     bool
	HeaderSize      int
}

// decodeLiteralsHeader decodes the header at the start of src.
//
// Byte 0 carries the kind in bits [0:2) and the size format in bits [2:4).
// Raw and run-length sections store only a regenerated size: 5 bits of
// byte 0 for the 1-byte form, or 12/20 bits packed little-endian across
// 2/3 bytes. Compressed and treeless sections store regenerated and
// compressed sizes of 10, 14 or 18 bits each, packed little-endian
// immediately after the four control bits.
func decodeLiteralsHeader(src []byte) (LiteralsHeader, errorCode) {
	if len(src) == 0 {
		return LiteralsHeader{}, ecTruncatedInput
	}
	b0 := int(src[0])
	h := LiteralsHeader{
		Kind:       LiteralsKind(b0 & 3),
		SizeFormat: uint8(b0 >> 2 & 3),
	}
	switch h.Kind {
	case LiteralsRaw, LiteralsRLE:
		switch h.SizeFormat {
		case 0, 2:
			h.RegeneratedSize = b0 >> 3
			h.HeaderSize = 1
		case 1:
			h.HeaderSize = 2
			if len(src) < 2 {
				return h, ecTruncatedInput
			}
			h.RegeneratedSize = b0>>4 | int(src[1])<<4
		case 3:
			h.HeaderSize = 3
			if len(src) < 3 {
				return h, ecTruncatedInput
			}
			h.RegeneratedSize = b0>>4 | int(src[1])<<4 | int(src[2])<<12
		}
	default:
		switch h.SizeFormat {
		case 0, 1:
			h.HeaderSize = 3
			h.FourStreams = h.SizeFormat == 1
			if len(src) < 3 {
				return h, ecTruncatedInput
			}
			h.RegeneratedSize = b0>>4 | int(src[1]&0x3f)<<4
			h.CompressedSize = int(src[1])>>6 | int(src[2])<<2
		case 2:
			h.HeaderSize = 4
			h.FourStreams = true
			if len(src) < 4 {
				return h, ecTruncatedInput
			}
			h.RegeneratedSize = b0>>4 | int(src[1])<<4 | int(src[2]&3)<<12
			h.CompressedSize = int(src[2])>>2 | int(src[3])<<6
		case 3:
			h.HeaderSize = 5
			h.FourStreams = true
			if len(src) < 5 {
				return h, ecTruncatedInput
			}
			h.RegeneratedSize = b0>>4 | int(src[1])<<4 | int(src[2]&0x3f)<<12
			h.CompressedSize = int(src[2])>>6 | int(src[3])<<2 | int(src[4])<<10
		}
	}
	return h, ecOK
}

// decodeLiteralsSection decodes one literals section at the start of src,
// emitting one row per consumed byte and appending the regenerated bytes
// to lits. It returns the new literals buffer, the bytes consumed from src
// and the section header.
func (d *decoder) decodeLiteralsSection(src []byte, lits []byte) ([]byte, int, LiteralsHeader, errorCode) {
	h, ec := decodeLiteralsHeader(src)
	if ec != ecOK {
		return lits, 0, h, ec
	}
	d.w.emitHeader(src[:h.HeaderSize], h.RegeneratedSize)
	n := h.HeaderSize
	body := src[n:]

	switch h.Kind {
	case LiteralsRaw:
		if len(body) < h.RegeneratedSize {
			return lits, n, h, ecTruncatedInput
		}
		d.w.emitAll(TagLiteralsRawBytes, body[:h.RegeneratedSize])
		lits = append(lits, body[:h.RegeneratedSize]...)
		n += h.RegeneratedSize

	case LiteralsRLE:
		if len(body) < 1 {
			return lits, n, h, ecTruncatedInput
		}
		d.w.emit(TagLiteralsRleByte, body[0])
		for i := 0; i < h.RegeneratedSize; i++ {
			lits = append(lits, body[0])
		}
		n++

	case LiteralsCompressed, LiteralsTreeless:
		if len(body) < h.CompressedSize {
			return lits, n, h, ecTruncatedInput
		}
		body = body[:h.CompressedSize]
		streams := body
		if h.Kind == LiteralsCompressed {
			tab, weightTab, treeLen, ec := huffReadTree(body)
			if ec != ecOK {
				return lits, n, h, ec
			}
			d.w.emitAll(TagHuffmanTree, body[:treeLen])
			d.huff = tab
			if weightTab != nil {
				d.recordTable(ClassHuffmanWeight, weightTab)
			}
			streams = body[treeLen:]
		} else if d.huff == nil {
			// treeless section before any tree in this frame
			return lits, n, h, ecHuffmanDecodeFailure
		}
		d.w.emitAll(TagLiteralsStream, streams)
		before := len(lits)
		lits, ec = d.huff.decodeLiterals(lits, h.RegeneratedSize, h.FourStreams, streams)
		if ec != ecOK {
			return lits, n, h, ec
		}
		if len(lits)-before != h.RegeneratedSize {
			return lits, n, h, ecHuffmanDecodeFailure
		}
		n += h.CompressedSize
	}
	return lits, n, h, ecOK
}
