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

// Package witgen decodes zstd-compressed data while recording a complete,
// byte-indexed execution trace of the decode. For every input byte
// consumed it appends one Row carrying the byte's semantic role, its
// owning block index and derived bookkeeping; the trace, together with
// the decoded literals, entropy tables, sequence list and reconstructed
// output, is consumed by a downstream verification stage.
//
// Decoding is single-threaded and single-pass over a fully resident
// input. Independent calls share no state and may run concurrently.
// Dictionaries and streaming input are not supported.
package witgen

// TableInfo records a decode table built from the input, keyed by the
// block that carried its description and the symbol class it decodes.
type TableInfo struct {
	BlockIdx int
	Class    SymbolClass
	Table    *FseTable
}

// Result is the aggregate outcome of one decode call. The slices grow in
// decode order; consumers filter and group them by block index or tag.
type Result struct {
	Rows          []Row
	Literals      []byte
	Tables        []TableInfo
	Blocks        []BlockInfo
	SequenceInfos []SequenceInfo
	Sequences     []Sequence
	Execs         []SequenceExec
	Output        []byte
}

// decoder is the per-call decode state. Everything here is created fresh
// by Process and discarded with the call.
type decoder struct {
	w   *rowWriter
	res *Result

	// per-frame state, reset at every frame boundary
	huff          *huffTable
	tables        seqTables
	repeatOffsets [3]int
	frameStart    int

	nBlocks int
}

func (d *decoder) recordTable(class SymbolClass, t *FseTable) {
	d.res.Tables = append(d.res.Tables, TableInfo{
		BlockIdx: d.w.blockIdx,
		Class:    class,
		Table:    t,
	})
}

// Process decodes src, which may hold several concatenated frames, and
// returns the reconstructed output together with the full witness trace.
// Any failure aborts the call; no partial result is returned.
func Process(src []byte) (*Result, error) {
	return process(src, -1)
}

// ProcessChecked is Process with an expected total decompressed size;
// a reconstruction of any other size fails the call.
func ProcessChecked(src []byte, decodedLen int) (*Result, error) {
	return process(src, decodedLen)
}

func process(src []byte, want int) (*Result, error) {
	d := &decoder{w: newRowWriter(), res: &Result{}}
	if len(src) == 0 {
		return nil, ErrTruncatedInput
	}
	cursor := 0
	for cursor < len(src) {
		fh, ec := d.parseFrameHeader(src[cursor:])
		if ec != ecOK {
			return nil, errs[ec]
		}
		cursor += fh.headerSize
		d.huff = nil
		d.tables = seqTables{}
		d.repeatOffsets = [3]int{1, 4, 8}
		d.frameStart = len(d.res.Output)

		for {
			n, last, ec := d.decodeBlock(src[cursor:])
			if ec != ecOK {
				return nil, errs[ec]
			}
			cursor += n
			if last {
				break
			}
		}

		if fh.hasChecksum {
			if len(src)-cursor < 4 {
				return nil, ErrTruncatedInput
			}
			d.w.emitAll(TagChecksum, src[cursor:cursor+4])
			cursor += 4
		}
		if fh.hasContentSize {
			got := len(d.res.Output) - d.frameStart
			if uint64(got) < fh.contentSize {
				return nil, ErrTruncatedInput
			}
			if uint64(got) > fh.contentSize {
				return nil, ErrMalformedHeader
			}
		}
	}
	if want >= 0 && len(d.res.Output) != want {
		if len(d.res.Output) < want {
			return nil, ErrTruncatedInput
		}
		return nil, ErrMalformedHeader
	}
	d.res.Rows = d.w.rows
	return d.res, nil
}

// Pad extends the trace to total rows. Padding rows replicate the final
// real row's block index and running regenerated size, carry a zero value
// byte and continue the byte-index progression, so the (block, byte)
// key stays unique over the whole trace. Once padding starts it never
// reverts: the padded trace is non-padding rows followed by padding rows.
// Pad is a no-op when the trace already has total rows or more.
func (r *Result) Pad(total int) {
	if len(r.Rows) == 0 || total <= len(r.Rows) {
		return
	}
	last := r.Rows[len(r.Rows)-1]
	byteIdx := last.ByteIdx
	for len(r.Rows) < total {
		byteIdx++
		r.Rows = append(r.Rows, Row{
			Tag:        TagNull,
			BlockIdx:   last.BlockIdx,
			ByteIdx:    byteIdx,
			RegenSoFar: last.RegenSoFar,
			IsPadding:  true,
		})
	}
}
