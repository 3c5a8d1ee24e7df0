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
	"errors"
)

// The exported sentinels describe every way a decode call can fail.
// A failed call returns one of these (possibly wrapped) and no result.
var (
	// ErrMalformedHeader indicates a bad frame magic, a reserved or
	// unsupported frame-header feature, an inconsistent literals header,
	// or bitstream corruption inside a block.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrUnsupportedBlockType indicates a reserved block type.
	ErrUnsupportedBlockType = errors.New("unsupported block type")
	// ErrHuffmanDecodeFailure indicates a prefix-code table that cannot be
	// built or a literals stream that does not decode to the declared size.
	ErrHuffmanDecodeFailure = errors.New("huffman decode failure")
	// ErrFseTableOverflow indicates a normalized distribution that does not
	// sum exactly to the declared table size.
	ErrFseTableOverflow = errors.New("fse table overflow")
	// ErrCorruptedOffset indicates a back-reference pointing before the
	// start of the reconstructed output.
	ErrCorruptedOffset = errors.New("corrupted offset")
	// ErrTruncatedInput indicates a declared size that exceeds the bytes
	// actually present.
	ErrTruncatedInput = errors.New("truncated input")
)

type errorCode uint32

const (
	ecOK errorCode = iota
	ecMalformedHeader
	ecUnsupportedBlockType
	ecHuffmanDecodeFailure
	ecFseTableOverflow
	ecCorruptedOffset
	ecTruncatedInput
	ecLastCode
)

var errs = [ecLastCode]error{
	ecOK:                   nil,
	ecMalformedHeader:      ErrMalformedHeader,
	ecUnsupportedBlockType: ErrUnsupportedBlockType,
	ecHuffmanDecodeFailure: ErrHuffmanDecodeFailure,
	ecFseTableOverflow:     ErrFseTableOverflow,
	ecCorruptedOffset:      ErrCorruptedOffset,
	ecTruncatedInput:       ErrTruncatedInput,
}
