// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"io"
	"strings"
	"sync"
)

// LineTeeReader wraps an io.Reader and splits what passes through it into lines.
// Both '\n' and '\r' terminate a line, so carriage-return progress bars are seen as they redraw.
// Every complete line is handed to the callback and the last few are kept as a tail.
// It is safe for concurrent use.
type LineTeeReader struct {
	reader   io.Reader
	onLine   func(string)
	partial  strings.Builder
	tail     []string
	tailSize int
	lastLine string
	mu       sync.RWMutex
}

// NewLineTeeReader wraps r. onLine may be nil. tailSize is the number of lines kept for Tail.
func NewLineTeeReader(r io.Reader, tailSize int, onLine func(string)) *LineTeeReader {
	return &LineTeeReader{
		reader:   r,
		onLine:   onLine,
		tailSize: tailSize,
	}
}

// Read implements io.Reader.
// The callback runs on the reading goroutine, after the internal lock is released.
func (lt *LineTeeReader) Read(p []byte) (int, error) {
	n, err := lt.reader.Read(p)
	if n > 0 {
		for _, line := range lt.split(p[:n]) {
			if lt.onLine != nil {
				lt.onLine(line)
			}
		}
	}

	if err == io.EOF {
		if line, ok := lt.flush(); ok && lt.onLine != nil {
			lt.onLine(line)
		}
	}

	return n, err //nolint:wrapcheck
}

// Drain reads r to the end. A read error is returned and the remaining data is discarded.
func (lt *LineTeeReader) Drain() error {
	_, err := io.Copy(io.Discard, lt)
	return err //nolint:wrapcheck
}

func (lt *LineTeeReader) split(data []byte) []string {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	var lines []string

	for _, b := range data {
		if b != '\n' && b != '\r' {
			lt.partial.WriteByte(b)
			continue
		}

		if lt.partial.Len() == 0 {
			continue
		}

		lines = append(lines, lt.complete())
	}

	return lines
}

func (lt *LineTeeReader) flush() (string, bool) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	if lt.partial.Len() == 0 {
		return "", false
	}

	return lt.complete(), true
}

// complete must be called with the write lock held.
func (lt *LineTeeReader) complete() string {
	line := lt.partial.String()
	lt.partial.Reset()
	lt.lastLine = line

	if lt.tailSize > 0 {
		lt.tail = append(lt.tail, line)
		if len(lt.tail) > lt.tailSize {
			lt.tail = lt.tail[len(lt.tail)-lt.tailSize:]
		}
	}

	return line
}

// LastLine returns the most recent complete line, truncated to maxLength with "..." when maxLength > 3.
func (lt *LineTeeReader) LastLine(maxLength int) string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	if maxLength > 3 && len(lt.lastLine) > maxLength {
		return lt.lastLine[:maxLength-3] + "..."
	}

	return lt.lastLine
}

// Tail returns a copy of the last complete lines, oldest first.
func (lt *LineTeeReader) Tail() []string {
	lt.mu.RLock()
	defer lt.mu.RUnlock()

	out := make([]string, len(lt.tail))
	copy(out, lt.tail)

	return out
}
