package fasta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

const (
	// default max line size for sequence
	maxLineSize = 60
	// size of the buffer for writing to file
	maxBufferSize = 1024 * 1024
)

type writer struct {
	buf       *bytes.Buffer
	lineWidth int
	out       io.Writer
}

func newWriter(out io.Writer, lineWidth int) *writer {
	if lineWidth <= 0 {
		lineWidth = maxLineSize
	}
	return &writer{
		buf:       bytes.NewBuffer(make([]byte, 0, 4096)),
		lineWidth: lineWidth,
		out:       out,
	}
}

// sequence id is written back as
// >sequenceID
// so an unnamed record keeps its synthesized name
func (w *writer) writeRecord(r Record) error {

	w.buf.WriteByte(headerMarker)
	w.buf.WriteString(r.ID)
	w.buf.WriteByte('\n')

	s := r.Sequence
	for len(s) > 0 {
		end := w.lineWidth
		if end > len(s) {
			end = len(s)
		}
		w.buf.WriteString(s[:end])
		w.buf.WriteByte('\n')
		s = s[end:]

		if w.buf.Len() > maxBufferSize {
			if err := w.flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) flush() error {
	_, err := w.out.Write(w.buf.Bytes())
	w.buf.Reset()
	if err != nil {
		return fmt.Errorf("fail to write fasta: %w", err)
	}
	return nil
}

// WriteFasta writes all records of idx to out in FASTA format, wrapping
// sequences every lineWidth characters (60 if lineWidth is not positive)
func (idx *Index) WriteFasta(out io.Writer, lineWidth int) error {

	w := newWriter(out, lineWidth)
	for _, r := range idx.Records() {
		if err := w.writeRecord(r); err != nil {
			return err
		}
	}
	return w.flush()
}

// WriteJSON writes all records of idx to out as a JSON array, in index order
func (idx *Index) WriteJSON(out io.Writer) error {

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(idx.Records()); err != nil {
		return fmt.Errorf("fail to write json: %w", err)
	}
	return nil
}
