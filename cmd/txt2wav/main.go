// seehuhn.de/go/qapdf - typeset plain text as minimal PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Txt2wav reads a text file and writes a WAV file with one short tone per
// character.
//
// Usage:
//
//	txt2wav [-o out.wav] [-rate 8000] [-dur 0.01] input.txt
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"seehuhn.de/go/qapdf/tone"
)

func main() {
	outName := flag.String("o", "", "output file name (default: input name with .wav suffix)")
	rate := flag.Int("rate", tone.DefaultRate, "samples per second")
	dur := flag.Float64("dur", tone.DefaultDuration, "tone length per character, in seconds")
	verbose := flag.Bool("v", false, "log details about the generated file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.txt\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	inName := flag.Arg(0)
	if *outName == "" {
		*outName = strings.TrimSuffix(inName, ".txt") + ".wav"
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	text, err := os.ReadFile(inName)
	if err != nil {
		log.Fatal(err)
	}

	opt := &tone.Options{Rate: *rate, Duration: *dur}
	logger.Debug("synthesizing",
		slog.Int("rate", *rate),
		slog.Int("samplesPerChar", opt.SamplesPerChar()))
	err = tone.Create(*outName, string(text), opt)
	if err != nil {
		log.Fatal(err)
	}

	chars := len([]rune(string(text)))
	length := time.Duration(float64(chars) * *dur * float64(time.Second))
	logger.Info("wrote WAV file",
		slog.String("file", *outName),
		slog.Int("chars", chars),
		slog.Duration("length", length))
}
