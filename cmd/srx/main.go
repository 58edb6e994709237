// Command srx compresses a single file with the symbol-ranking encoder.
//
//	srx <input_path> <output_path>
package main

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/srxgo/srx"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <input_path> <output_path>\n", os.Args[0])
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer in.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer out.Close()

	br := bufio.NewReader(in)
	bw := bufio.NewWriter(out)

	start := time.Now()
	if err := srx.Encode(br, bw); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}
	elapsed := time.Since(start)

	inInfo, err := in.Stat()
	if err != nil {
		return fmt.Errorf("statting input: %w", err)
	}
	outInfo, err := out.Stat()
	if err != nil {
		return fmt.Errorf("statting output: %w", err)
	}

	inSize := inInfo.Size()
	outSize := outInfo.Size()
	ratio := 0.0
	if outSize > 0 {
		ratio = float64(inSize) / float64(outSize)
	}
	fmt.Fprintf(os.Stderr, "%d bytes -> %d bytes (%.3fx) in %s\n",
		inSize, outSize, ratio, elapsed.Round(time.Millisecond))
	return nil
}
