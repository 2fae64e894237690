// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lightrag

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
)

// ParseErrorPrefix starts the error fragment reported for an undecodable line.
const ParseErrorPrefix = "Error parsing server response"

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader decodes the NDJSON body of /query/stream.
//
// Each non-empty line is a JSON object carrying either a "response" chunk or
// an "error" fragment. Chunks and fragments are handed to the callbacks in
// the order they arrive, from the goroutine that calls Process.
type StreamReader struct {
	reader *bufio.Reader
	chunks int
	errs   int
}

// NewStreamReader creates a new stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{reader: bufio.NewReader(r)}
}

// Process reads until EOF or ctx is cancelled. Undecodable lines are
// reported through onError and do not stop the stream. A read failure other
// than EOF is returned.
func (s *StreamReader) Process(ctx context.Context, onChunk, onError func(string)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := s.reader.ReadBytes('\n')
		if len(bytes.TrimSpace(line)) > 0 {
			s.handleLine(line, onChunk, onError)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Stats returns the number of chunks and error fragments seen so far.
func (s *StreamReader) Stats() (chunks, errs int) {
	return s.chunks, s.errs
}

func (s *StreamReader) handleLine(line []byte, onChunk, onError func(string)) {
	line = bytes.TrimSpace(line)

	var parsed streamLine
	if err := json.Unmarshal(line, &parsed); err != nil {
		s.errs++
		if onError != nil {
			onError(ParseErrorPrefix + ": " + string(line))
		}
		return
	}

	switch {
	case parsed.Response != "":
		s.chunks++
		if onChunk != nil {
			onChunk(parsed.Response)
		}
	case parsed.Error != "":
		s.errs++
		if onError != nil {
			onError(parsed.Error)
		}
	}
}
