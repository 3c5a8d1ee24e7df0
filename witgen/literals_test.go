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
	"testing"
)

func TestDecodeLiteralsHeader(t *testing.T) {
	cases := []struct {
		name string
		src  []byte
		want LiteralsHeader
	}{
		{
			// the smallest raw section: one literal in a one-byte header
			name: "raw-1byte",
			src:  []byte{0x08},
			want: LiteralsHeader{Kind: LiteralsRaw, SizeFormat: 2, RegeneratedSize: 1, HeaderSize: 1},
		},
		{
			name: "raw-1byte-alt-format",
			src:  []byte{0x18},
			want: LiteralsHeader{Kind: LiteralsRaw, SizeFormat: 0b10, RegeneratedSize: 3, HeaderSize: 1},
		},
		{
			// 12-bit size spread over two bytes, low nibble in byte 0
			name: "raw-2byte",
			src:  []byte{0x54, 0x32},
			want: LiteralsHeader{Kind: LiteralsRaw, SizeFormat: 1, RegeneratedSize: 0x325, HeaderSize: 2},
		},
		{
			name: "raw-3byte",
			src:  []byte{0xfc, 0xff, 0xff},
			want: LiteralsHeader{Kind: LiteralsRaw, SizeFormat: 3, RegeneratedSize: 0xfffff, HeaderSize: 3},
		},
		{
			name: "rle-1byte",
			src:  []byte{0x21},
			want: LiteralsHeader{Kind: LiteralsRLE, SizeFormat: 0, RegeneratedSize: 4, HeaderSize: 1},
		},
		{
			// 10-bit regenerated and compressed sizes in three bytes
			name: "compressed-3byte",
			src:  []byte{0x02, 0x40, 0x01},
			want: LiteralsHeader{Kind: LiteralsCompressed, SizeFormat: 0, RegeneratedSize: 0, CompressedSize: 5, HeaderSize: 3},
		},
		{
			name: "compressed-3byte-4streams",
			src:  []byte{0xa6, 0x83, 0x01},
			want: LiteralsHeader{Kind: LiteralsCompressed, SizeFormat: 1, RegeneratedSize: 0x3a, CompressedSize: 6, FourStreams: true, HeaderSize: 3},
		},
		{
			// 14-bit sizes in four bytes
			name: "compressed-4byte",
			src:  []byte{0x0a, 0x21, 0x30, 0x02},
			want: LiteralsHeader{Kind: LiteralsCompressed, SizeFormat: 2, RegeneratedSize: 0x210, CompressedSize: 0x8c, FourStreams: true, HeaderSize: 4},
		},
		{
			// 18-bit sizes in five bytes
			name: "treeless-5byte",
			src:  []byte{0x0f, 0x00, 0x40, 0x01, 0x00},
			want: LiteralsHeader{Kind: LiteralsTreeless, SizeFormat: 3, RegeneratedSize: 0, CompressedSize: 5, FourStreams: true, HeaderSize: 5},
		},
	}
	for _, c := range cases {
		got, ec := decodeLiteralsHeader(c.src)
		if ec != ecOK {
			t.Errorf("%s: %v", c.name, errs[ec])
			continue
		}
		if got != c.want {
			t.Errorf("%s: %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestDecodeLiteralsHeaderTruncated(t *testing.T) {
	cases := [][]byte{
		{},
		{0x54},             // raw 2-byte form, one byte present
		{0xfc, 0xff},       // raw 3-byte form, two bytes present
		{0x02, 0x40},       // compressed 3-byte form
		{0x0a, 0x21, 0x30}, // compressed 4-byte form
		{0x0f, 0x00, 0x40, 0x01},
	}
	for _, src := range cases {
		if _, ec := decodeLiteralsHeader(src); ec != ecTruncatedInput {
			t.Errorf("%#v: got %v", src, errs[ec])
		}
	}
}

func TestLiteralsSectionTruncated(t *testing.T) {
	d := &decoder{w: newRowWriter(), res: &Result{}}
	// compressed section declaring more bytes than are present
	hdr := []byte{0x02, 0x40, 0x01} // compressed size 5
	if _, _, _, ec := d.decodeLiteralsSection(append(hdr, 0x01, 0x02), nil); ec != ecTruncatedInput {
		t.Fatalf("got %v", errs[ec])
	}
}

func TestTreelessWithoutTree(t *testing.T) {
	d := &decoder{w: newRowWriter(), res: &Result{}}
	// treeless section with no prior table in the frame
	src := []byte{0x07, 0x40, 0x01, 0x01, 0x02, 0x03, 0x04, 0x05}
	if _, _, _, ec := d.decodeLiteralsSection(src, nil); ec != ecHuffmanDecodeFailure {
		t.Fatalf("got %v", errs[ec])
	}
}
