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

// SequenceExec records the byte ranges produced by replaying one sequence:
// a copy of LitLen bytes from the literals buffer starting at LitStart,
// then a MatchLen-byte back-reference copy whose source starts at MatchPos
// in the output. Trailing literals after a block's last sequence are
// recorded with Seq equal to the block's sequence count and MatchLen 0.
type SequenceExec struct {
	BlockIdx int
	Seq      int
	OutPos   int // output offset where this execution began
	LitStart int // offset into the flat literals buffer
	LitLen   int
	MatchPos int // source offset into the output
	MatchLen int
}

// executeSequences replays a block's sequences against the growing output.
// Back-reference copies proceed byte by byte so that an offset smaller
// than the match length correctly replicates the bytes it is producing.
// Offsets may not reach back past frameStart, the output position where
// the current frame began.
func (d *decoder) executeSequences(seqs []Sequence, blockLits []byte) errorCode {
	litPos := 0
	base := len(d.res.Literals) - len(blockLits)
	for i, s := range seqs {
		if s.LiteralLength > len(blockLits)-litPos {
			return ecTruncatedInput
		}
		exec := SequenceExec{
			BlockIdx: d.w.blockIdx,
			Seq:      i,
			OutPos:   len(d.res.Output),
			LitStart: base + litPos,
			LitLen:   s.LiteralLength,
			MatchLen: s.MatchLength,
		}
		d.res.Output = append(d.res.Output, blockLits[litPos:litPos+s.LiteralLength]...)
		litPos += s.LiteralLength

		if s.Offset > len(d.res.Output)-d.frameStart {
			return ecCorruptedOffset
		}
		match := len(d.res.Output) - s.Offset
		exec.MatchPos = match
		for j := 0; j < s.MatchLength; j++ {
			d.res.Output = append(d.res.Output, d.res.Output[match+j])
		}
		d.res.Execs = append(d.res.Execs, exec)
	}
	if litPos < len(blockLits) {
		// literals beyond the last sequence are appended uncopied
		d.res.Execs = append(d.res.Execs, SequenceExec{
			BlockIdx: d.w.blockIdx,
			Seq:      len(seqs),
			OutPos:   len(d.res.Output),
			LitStart: base + litPos,
			LitLen:   len(blockLits) - litPos,
		})
		d.res.Output = append(d.res.Output, blockLits[litPos:]...)
	}
	return ecOK
}
