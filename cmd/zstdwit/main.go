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

// zstdwit decodes a zstd file and prints its witness trace.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bravesasha/zkevm-circuits/witgen"
)

func fatalf(f string, args ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", args...)
	os.Exit(1)
}

func main() {
	var dumpRows bool
	var pad int
	var outfile string
	flag.BoolVar(&dumpRows, "rows", false, "print every trace row")
	flag.IntVar(&pad, "pad", 0, "pad the trace to this many rows")
	flag.StringVar(&outfile, "o", "", "write the reconstructed output to a file")
	flag.Parse()

	args := flag.Args()
	if len(args) != 1 {
		fatalf("usage: %s [-rows] [-pad n] [-o file] <file.zst>", os.Args[0])
	}
	buf, err := os.ReadFile(args[0])
	if err != nil {
		fatalf("reading file: %s", err)
	}

	res, err := witgen.Process(buf)
	if err != nil {
		fatalf("decoding: %s", err)
	}
	if pad > 0 {
		res.Pad(pad)
	}
	if err := witgen.CheckRows(res.Rows); err != nil {
		fatalf("trace inconsistency: %s", err)
	}

	fmt.Printf("%dB -> %dB, %d blocks, %d sequences, %d rows\n",
		len(buf), len(res.Output), len(res.Blocks), len(res.Sequences), len(res.Rows))
	for _, b := range res.Blocks {
		fmt.Printf("block %d: %s, %dB -> %dB, last=%v\n",
			b.Idx, b.Type, b.Size, b.DecodedSize, b.Last)
	}
	if dumpRows {
		for _, r := range res.Rows {
			mark := ""
			if r.IsPadding {
				mark = " padding"
			}
			fmt.Printf("%8d block=%-4d %-18s %#02x regen=%d%s\n",
				r.ByteIdx, r.BlockIdx, r.Tag, r.Value, r.RegenSoFar, mark)
		}
	}
	if outfile != "" {
		if err := os.WriteFile(outfile, res.Output, 0644); err != nil {
			fatalf("writing output: %s", err)
		}
	}
}
