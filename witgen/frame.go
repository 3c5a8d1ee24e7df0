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
	"encoding/binary"
)

const frameMagic = 0xfd2fb528

type frameHeader struct {
	hasChecksum    bool
	hasContentSize bool
	contentSize    uint64
	headerSize     int
}

// parseFrameHeader decodes the frame header at the start of src and emits
// one row per header byte: the magic number, descriptor and window
// descriptor as TagFrameHeader, the declared-size field as
// TagFrameContentSize. Dictionary references are outside the supported
// profile; a nonzero dictionary ID fails the decode.
func (d *decoder) parseFrameHeader(src []byte) (frameHeader, errorCode) {
	var fh frameHeader
	if len(src) < 5 {
		return fh, ecTruncatedInput
	}
	if binary.LittleEndian.Uint32(src) != frameMagic {
		return fh, ecMalformedHeader
	}
	fhd := src[4]
	if fhd&0x08 != 0 {
		// reserved descriptor bit
		return fh, ecMalformedHeader
	}
	single := fhd&0x20 != 0
	fh.hasChecksum = fhd&0x04 != 0
	dictFlag := fhd & 3
	fcsFlag := fhd >> 6

	n := 5
	if !single {
		if len(src) < n+1 {
			return fh, ecTruncatedInput
		}
		n++ // window descriptor
	}

	dictSize := [4]int{0, 1, 2, 4}[dictFlag]
	if dictSize > 0 {
		if len(src) < n+dictSize {
			return fh, ecTruncatedInput
		}
		dictID := uint32(0)
		for i := 0; i < dictSize; i++ {
			dictID |= uint32(src[n+i]) << (8 * i)
		}
		if dictID != 0 {
			return fh, ecMalformedHeader
		}
		n += dictSize
	}

	fcsSize := 0
	switch fcsFlag {
	case 0:
		if single {
			fcsSize = 1
		}
	case 1:
		fcsSize = 2
	case 2:
		fcsSize = 4
	case 3:
		fcsSize = 8
	}
	if len(src) < n+fcsSize {
		return fh, ecTruncatedInput
	}
	if fcsSize > 0 {
		fh.hasContentSize = true
		switch fcsSize {
		case 1:
			fh.contentSize = uint64(src[n])
		case 2:
			fh.contentSize = 256 + uint64(binary.LittleEndian.Uint16(src[n:]))
		case 4:
			fh.contentSize = uint64(binary.LittleEndian.Uint32(src[n:]))
		case 8:
			fh.contentSize = binary.LittleEndian.Uint64(src[n:])
		}
	}

	d.w.emitAll(TagFrameHeader, src[:n])
	d.w.emitAll(TagFrameContentSize, src[n:n+fcsSize])
	fh.headerSize = n + fcsSize
	return fh, ecOK
}
