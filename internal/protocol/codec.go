package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Frames are newline-delimited JSON. A frame that is not a JSON object
// is handed to the legacy string-command adapter instead of failing the
// connection.

var ErrFrameTooLarge = fmt.Errorf("frame exceeds size limit")

// FrameReader reads length-bounded line frames from a connection.
type FrameReader struct {
	r   *bufio.Reader
	max int
}

func NewFrameReader(r io.Reader, maxBytes int) *FrameReader {
	return &FrameReader{
		r:   bufio.NewReaderSize(r, 64*1024),
		max: maxBytes,
	}
}

// ReadFrame returns the next frame without its trailing newline. Returns
// io.EOF when the peer closed cleanly, ErrFrameTooLarge on oversized
// input (fatal for the connection).
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	var buf bytes.Buffer
	for {
		line, isPrefix, err := fr.r.ReadLine()
		if err != nil {
			return nil, err
		}
		if buf.Len()+len(line) > fr.max {
			return nil, ErrFrameTooLarge
		}
		buf.Write(line)
		if !isPrefix {
			return buf.Bytes(), nil
		}
	}
}

// DecodeRequest parses a JSON frame into a Request. The frame must be a
// JSON object with a non-empty type.
func DecodeRequest(frame []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(frame, &req); err != nil {
		return nil, fmt.Errorf("malformed request frame: %w", err)
	}
	if req.Type == "" {
		return nil, fmt.Errorf("request frame missing type")
	}
	return &req, nil
}

// IsJSONFrame reports whether the frame looks like a typed envelope
// rather than a legacy string command.
func IsJSONFrame(frame []byte) bool {
	trimmed := bytes.TrimLeft(frame, " \t")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// EncodeFrame marshals v and appends the frame delimiter.
func EncodeFrame(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
