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
	"bytes"
	"testing"
)

func execDecoder(lits []byte) *decoder {
	d := &decoder{w: newRowWriter(), res: &Result{}}
	d.res.Literals = lits
	return d
}

func TestExecuteSequences(t *testing.T) {
	d := execDecoder([]byte("abcdef"))
	seqs := []Sequence{
		{LiteralLength: 3, MatchLength: 4, Offset: 2},
		{LiteralLength: 1, MatchLength: 3, Offset: 7},
	}
	if ec := d.executeSequences(seqs, d.res.Literals); ec != ecOK {
		t.Fatal(errs[ec])
	}
	if string(d.res.Output) != "abcbcbcdbcbef" {
		t.Fatalf("output %q", d.res.Output)
	}
	if len(d.res.Execs) != 3 {
		t.Fatalf("%d executions", len(d.res.Execs))
	}
	// trailing literals carry the sequence count and no match
	tail := d.res.Execs[2]
	if tail.Seq != 2 || tail.LitLen != 2 || tail.MatchLen != 0 {
		t.Fatalf("tail execution %+v", tail)
	}
	if tail.OutPos != 11 || tail.LitStart != 4 {
		t.Fatalf("tail execution %+v", tail)
	}
}

func TestExecuteOverlappingCopy(t *testing.T) {
	// offset 1 with a longer match replicates the byte being produced
	d := execDecoder([]byte("x"))
	seqs := []Sequence{{LiteralLength: 1, MatchLength: 5, Offset: 1}}
	if ec := d.executeSequences(seqs, d.res.Literals); ec != ecOK {
		t.Fatal(errs[ec])
	}
	if string(d.res.Output) != "xxxxxx" {
		t.Fatalf("output %q", d.res.Output)
	}

	// offset 2 alternates the last two bytes
	d = execDecoder([]byte("ab"))
	seqs = []Sequence{{LiteralLength: 2, MatchLength: 5, Offset: 2}}
	if ec := d.executeSequences(seqs, d.res.Literals); ec != ecOK {
		t.Fatal(errs[ec])
	}
	if string(d.res.Output) != "abababa" {
		t.Fatalf("output %q", d.res.Output)
	}
}

func TestExecuteErrors(t *testing.T) {
	// more literals requested than the block regenerated
	d := execDecoder([]byte("ab"))
	seqs := []Sequence{{LiteralLength: 3, MatchLength: 0, Offset: 1}}
	if ec := d.executeSequences(seqs, d.res.Literals); ec != ecTruncatedInput {
		t.Fatalf("literal underflow: %v", errs[ec])
	}

	// offset reaching past the start of the output
	d = execDecoder([]byte("ab"))
	seqs = []Sequence{{LiteralLength: 2, MatchLength: 2, Offset: 3}}
	if ec := d.executeSequences(seqs, d.res.Literals); ec != ecCorruptedOffset {
		t.Fatalf("deep offset: %v", errs[ec])
	}

	// offsets may not cross a frame boundary
	d = execDecoder([]byte("a"))
	d.res.Output = []byte("zz")
	d.frameStart = 2
	seqs = []Sequence{{LiteralLength: 1, MatchLength: 2, Offset: 2}}
	if ec := d.executeSequences(seqs, d.res.Literals); ec != ecCorruptedOffset {
		t.Fatalf("cross-frame offset: %v", errs[ec])
	}
}

func TestExecuteBlockLiteralSlice(t *testing.T) {
	// a later block consumes only its own slice of the flat buffer
	d := execDecoder([]byte("XYab"))
	blockLits := d.res.Literals[2:]
	seqs := []Sequence{{LiteralLength: 2, MatchLength: 2, Offset: 2}}
	if ec := d.executeSequences(seqs, blockLits); ec != ecOK {
		t.Fatal(errs[ec])
	}
	if !bytes.Equal(d.res.Output, []byte("abab")) {
		t.Fatalf("output %q", d.res.Output)
	}
	if d.res.Execs[0].LitStart != 2 {
		t.Fatalf("literal start %d", d.res.Execs[0].LitStart)
	}
}
