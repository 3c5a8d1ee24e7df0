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

// reverseBitReader consumes a bitstream backward, starting just below the
// sentinel bit in the final byte and moving toward byte zero. Bytes are
// filled LSB-first by the encoder, so the next bit to read is always the
// highest unread bit position. Multi-bit reads return the field with its
// highest-position bit as the MSB.
//
// Reads past the start of the stream yield zero bits; callers detect the
// condition through overread.
type reverseBitReader struct {
	data   []byte
	bitPos int // unread bits below the cursor; negative after an overrun
}

func (r *reverseBitReader) init(data []byte) errorCode {
	if len(data) == 0 {
		return ecTruncatedInput
	}
	last := data[len(data)-1]
	if last == 0 {
		// no sentinel bit
		return ecMalformedHeader
	}
	r.data = data
	r.bitPos = (len(data)-1)*8 + bits.Len8(last) - 1
	return ecOK
}

func (r *reverseBitReader) peekBits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		idx := r.bitPos - 1 - i
		v <<= 1
		if idx >= 0 && r.data[idx>>3]&(1<<(idx&7)) != 0 {
			v |= 1
		}
	}
	return v
}

func (r *reverseBitReader) readBits(n int) int {
	v := r.peekBits(n)
	r.bitPos -= n
	return v
}

func (r *reverseBitReader) skipBits(n int) {
	r.bitPos -= n
}

func (r *reverseBitReader) remaining() int { return r.bitPos }
func (r *reverseBitReader) overread() bool { return r.bitPos < 0 }

// forwardBitReader consumes a bitstream forward: bit i of the stream is bit
// (i%8) of byte i/8, and a multi-bit field is returned with its first bit
// as the LSB. Reads past the end yield zero bits.
type forwardBitReader struct {
	data   []byte
	bitPos int
}

func (f *forwardBitReader) readBits(n int) int {
	v := 0
	for i := 0; i < n; i++ {
		idx := f.bitPos + i
		if idx < len(f.data)*8 && f.data[idx>>3]&(1<<(idx&7)) != 0 {
			v |= 1 << i
		}
	}
	f.bitPos += n
	return v
}

func (f *forwardBitReader) overread() bool {
	return f.bitPos > len(f.data)*8
}

// bytesRead reports the number of whole bytes the cursor has touched.
func (f *forwardBitReader) bytesRead() int {
	return (f.bitPos + 7) / 8
}
