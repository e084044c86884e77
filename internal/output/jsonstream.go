// Package output serializes a finished aggregation: one nested JSON document
// for the charting front end and flat CSV files per category.
//
// Nothing is rendered as a whole in memory. The document is emitted
// incrementally through JSONStream and every file goes through a Batch, so a
// failed run leaves no file at a final path.
package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind  frameKind
	count int
}

// JSONStream writes one JSON value incrementally through nested
// begin/field/end calls. Separators are tracked per frame. The first write
// error is kept and returned by every later call and by Close.
type JSONStream struct {
	w      *bufio.Writer
	stack  []frame
	err    error
	indent bool
	done   bool
}

// NewJSONStream wraps w. With indent set every member starts on its own line.
func NewJSONStream(w io.Writer, indent bool) *JSONStream {
	return &JSONStream{w: bufio.NewWriterSize(w, 64*1024), indent: indent}
}

// Err returns the first error encountered.
func (s *JSONStream) Err() error {
	return s.err
}

func (s *JSONStream) write(p []byte) {
	if s.err != nil {
		return
	}
	if _, err := s.w.Write(p); err != nil {
		s.err = err
	}
}

func (s *JSONStream) writeString(str string) {
	if s.err != nil {
		return
	}
	if _, err := s.w.WriteString(str); err != nil {
		s.err = err
	}
}

func (s *JSONStream) fail(err error) error {
	if s.err == nil {
		s.err = err
	}
	return s.err
}

// separate emits the comma and newline that precede a member of the current
// frame and counts it.
func (s *JSONStream) separate(want frameKind) error {
	if s.err != nil {
		return s.err
	}
	if len(s.stack) == 0 {
		if s.done {
			return s.fail(errors.New("jsonstream: value already written"))
		}
		return nil
	}
	top := &s.stack[len(s.stack)-1]
	if top.kind != want {
		return s.fail(errors.New("jsonstream: member written in wrong container"))
	}
	if top.count > 0 {
		s.writeString(",")
	}
	if s.indent {
		s.writeString("\n")
	}
	top.count++
	return s.err
}

func (s *JSONStream) key(k string) {
	b, err := json.Marshal(k)
	if err != nil {
		s.fail(err)
		return
	}
	s.write(b)
	s.writeString(": ")
}

func (s *JSONStream) value(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.fail(fmt.Errorf("jsonstream: encoding value: %w", err))
		return
	}
	s.write(b)
}

func (s *JSONStream) open(kind frameKind, delim string) error {
	s.writeString(delim)
	s.stack = append(s.stack, frame{kind: kind})
	return s.err
}

func (s *JSONStream) close(kind frameKind, delim string) error {
	if s.err != nil {
		return s.err
	}
	if len(s.stack) == 0 || s.stack[len(s.stack)-1].kind != kind {
		return s.fail(errors.New("jsonstream: unbalanced end"))
	}
	top := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	if s.indent && top.count > 0 {
		s.writeString("\n")
	}
	s.writeString(delim)
	if len(s.stack) == 0 {
		s.done = true
	}
	return s.err
}

// BeginObject opens an object as the root value or as an array element.
func (s *JSONStream) BeginObject() error {
	if len(s.stack) > 0 {
		if err := s.separate(frameArray); err != nil {
			return err
		}
	} else if err := s.separate(frameObject); err != nil {
		return err
	}
	return s.open(frameObject, "{")
}

// BeginObjectField opens an object as the value of key.
func (s *JSONStream) BeginObjectField(key string) error {
	if err := s.separate(frameObject); err != nil {
		return err
	}
	if len(s.stack) == 0 {
		return s.fail(errors.New("jsonstream: field outside object"))
	}
	s.key(key)
	return s.open(frameObject, "{")
}

// EndObject closes the innermost object.
func (s *JSONStream) EndObject() error {
	return s.close(frameObject, "}")
}

// BeginArrayField opens an array as the value of key.
func (s *JSONStream) BeginArrayField(key string) error {
	if err := s.separate(frameObject); err != nil {
		return err
	}
	if len(s.stack) == 0 {
		return s.fail(errors.New("jsonstream: field outside object"))
	}
	s.key(key)
	return s.open(frameArray, "[")
}

// EndArray closes the innermost array.
func (s *JSONStream) EndArray() error {
	return s.close(frameArray, "]")
}

// Field writes key and the JSON encoding of v into the current object.
func (s *JSONStream) Field(key string, v any) error {
	if err := s.separate(frameObject); err != nil {
		return err
	}
	if len(s.stack) == 0 {
		return s.fail(errors.New("jsonstream: field outside object"))
	}
	s.key(key)
	s.value(v)
	return s.err
}

// Element writes the JSON encoding of v into the current array.
func (s *JSONStream) Element(v any) error {
	if len(s.stack) == 0 {
		return s.fail(errors.New("jsonstream: element outside array"))
	}
	if err := s.separate(frameArray); err != nil {
		return err
	}
	s.value(v)
	return s.err
}

// Close flushes buffered output. It fails when the root value is incomplete,
// so an interrupted document is never reported as written.
func (s *JSONStream) Close() error {
	if s.err != nil {
		return s.err
	}
	if len(s.stack) > 0 || !s.done {
		return s.fail(errors.New("jsonstream: document incomplete"))
	}
	s.writeString("\n")
	if s.err == nil {
		if err := s.w.Flush(); err != nil {
			s.err = err
		}
	}
	return s.err
}
