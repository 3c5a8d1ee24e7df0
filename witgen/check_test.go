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

func TestCheckRowsEmpty(t *testing.T) {
	if err := CheckRows(nil); err == nil {
		t.Fatal("empty trace accepted")
	}
}

// literalsBlockRows builds the rows of a minimal block whose literals
// header declares two raw literal bytes.
func literalsBlockRows(rawRows int, declaredJump int) []Row {
	rows := []Row{
		{Tag: TagBlockHeader, BlockIdx: 1, ByteIdx: 1},
		{Tag: TagBlockHeader, BlockIdx: 1, ByteIdx: 2},
		{Tag: TagBlockHeader, BlockIdx: 1, ByteIdx: 3},
		// 0x10: raw literals, one-byte header, regenerated size 2
		{Tag: TagLiteralsHeader, BlockIdx: 1, ByteIdx: 4, Value: 0x10, RegenSoFar: declaredJump},
	}
	for i := 0; i < rawRows; i++ {
		rows = append(rows, Row{
			Tag:        TagLiteralsRawBytes,
			BlockIdx:   1,
			ByteIdx:    5 + i,
			Value:      'a',
			RegenSoFar: declaredJump,
		})
	}
	return rows
}

func TestCheckRowsLiteralsHeader(t *testing.T) {
	if err := CheckRows(literalsBlockRows(2, 2)); err != nil {
		t.Fatalf("consistent block rejected: %v", err)
	}
	if err := CheckRows(literalsBlockRows(1, 2)); err == nil {
		t.Fatal("missing raw literal row accepted")
	}
	if err := CheckRows(literalsBlockRows(3, 2)); err == nil {
		t.Fatal("surplus raw literal row accepted")
	}
	// running size advancing by a different amount than declared
	if err := CheckRows(literalsBlockRows(2, 3)); err == nil {
		t.Fatal("wrong running-size jump accepted")
	}
}

func TestCheckRowsPadding(t *testing.T) {
	rows := literalsBlockRows(2, 2)
	last := rows[len(rows)-1]
	pad := func(mut func(*Row)) []Row {
		p := Row{
			Tag:        TagNull,
			BlockIdx:   last.BlockIdx,
			ByteIdx:    last.ByteIdx + 1,
			RegenSoFar: last.RegenSoFar,
			IsPadding:  true,
		}
		mut(&p)
		return append(append([]Row{}, rows...), p)
	}
	if err := CheckRows(pad(func(*Row) {})); err != nil {
		t.Fatalf("well-formed padding rejected: %v", err)
	}
	if err := CheckRows(pad(func(p *Row) { p.BlockIdx++ })); err == nil {
		t.Fatal("padding with a new block index accepted")
	}
	if err := CheckRows(pad(func(p *Row) { p.RegenSoFar++ })); err == nil {
		t.Fatal("padding with a new running size accepted")
	}
	if err := CheckRows(pad(func(p *Row) { p.ByteIdx++ })); err == nil {
		t.Fatal("padding with a byte-index gap accepted")
	}
}
