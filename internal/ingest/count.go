package ingest

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"tropestats/internal/types"
)

// CountRows returns the number of data lines in a headered file: total lines
// minus the header. It is an estimate for progress reporting only; quoted
// fields spanning lines make it over-count.
func CountRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", types.ErrIOFailure, err)
	}
	defer f.Close()

	lines, err := countLines(f)
	if err != nil {
		return 0, fmt.Errorf("%w: counting %s: %v", types.ErrIOFailure, path, err)
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}

func countLines(r io.Reader) (int64, error) {
	reader := bufio.NewReaderSize(r, 256*1024)
	var lines int64
	var sawAnyByte bool
	lastByteWasNewline := false

	for {
		chunk, err := reader.ReadSlice('\n')
		if len(chunk) > 0 {
			sawAnyByte = true
			lastByteWasNewline = chunk[len(chunk)-1] == '\n'
			if lastByteWasNewline {
				lines++
			}
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			if err == bufio.ErrBufferFull {
				continue
			}
			return 0, err
		}
	}

	if !sawAnyByte {
		return 0, nil
	}
	if !lastByteWasNewline {
		lines++
	}
	return lines, nil
}
