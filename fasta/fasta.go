// Package fasta parses FASTA formatted text into an index of
// sequences keyed by their identifier.
//
// fasta format is:
//
//	>sequenceID some comments on sequence
//	ACAGGCAGAGACACGACAGACGACGACACAGGAGCAGACAGCAGCAGACGACCACATATT
//	TTTGCGGTCACATGACGACTTCGGCAGCGA
//
// Records without a usable header are named "Unnamed sequence <n>", n
// counting only the unnamed records of the document.
package fasta

import (
	"fmt"
	"io"

	"github.com/ShenghuiXue/bioinformatics-hub/alphabet"
)

// Options struct to store parsing related command line args
type Options struct {
	KeepWhitespace bool `short:"w" long:"keep-whitespace" description:"Keep leading and trailing whitespace of sequence lines. Only carriage-return and line-feed characters are removed"`
}

// Record is a single FASTA entry
type Record struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
}

// LookupError is returned when a sequence id is not present in an Index
type LookupError struct {
	ID string
}

func (e *LookupError) Error() string {
	return "This sequence id is not valid. sequenceId = " + e.ID
}

// Index maps sequence ids to sequences. Ids are unique: when a document
// holds the same id twice, the last sequence wins but the id keeps the
// position of its first occurrence.
//
// An Index is never modified once Parse returns, so it can be shared
// between goroutines without locking.
type Index struct {
	raw       string
	kind      alphabet.Kind
	opts      Options
	ids       []string
	sequences map[string]string
}

// Parse builds an Index from a FASTA document. Parsing never fails: empty
// or blank input gives an empty Index.
func Parse(raw string, kind alphabet.Kind) *Index {
	return ParseWithOptions(raw, kind, Options{})
}

// ParseWithOptions is like Parse with explicit parsing options
func ParseWithOptions(raw string, kind alphabet.Kind, options Options) *Index {

	idx := &Index{
		raw:       raw,
		kind:      kind,
		opts:      options,
		sequences: map[string]string{},
	}
	p := newParser(idx, options)
	p.parse(raw)
	return idx
}

// Read reads the whole FASTA document from r and parses it
func Read(r io.Reader, kind alphabet.Kind, options Options) (*Index, error) {

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read fasta: %w", err)
	}
	return ParseWithOptions(string(data), kind, options), nil
}

func (idx *Index) put(id, sequence string) {
	if _, ok := idx.sequences[id]; !ok {
		idx.ids = append(idx.ids, id)
	}
	idx.sequences[id] = sequence
}

// Raw returns the document the Index was parsed from, unmodified
func (idx *Index) Raw() string { return idx.raw }

// Kind returns the molecule kind the Index was parsed with
func (idx *Index) Kind() alphabet.Kind { return idx.kind }

// Options returns the options the Index was parsed with
func (idx *Index) Options() Options { return idx.opts }

// Size returns the number of distinct sequence ids
func (idx *Index) Size() int { return len(idx.ids) }

// SequenceIDs returns all sequence ids in the order they first appeared
func (idx *Index) SequenceIDs() []string {
	ids := make([]string, len(idx.ids))
	copy(ids, idx.ids)
	return ids
}

// SequenceByID returns the sequence stored under id. The id has to match
// exactly, otherwise a *LookupError is returned.
func (idx *Index) SequenceByID(id string) (string, error) {
	s, ok := idx.sequences[id]
	if !ok {
		return "", &LookupError{ID: id}
	}
	return s, nil
}

// SequencesWithIDs returns a copy of the id -> sequence mapping
func (idx *Index) SequencesWithIDs() map[string]string {
	m := make(map[string]string, len(idx.sequences))
	for id, s := range idx.sequences {
		m[id] = s
	}
	return m
}

// Record returns the record stored under id
func (idx *Index) Record(id string) (Record, error) {
	s, err := idx.SequenceByID(id)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Sequence: s}, nil
}

// Records returns all records in the order their id first appeared
func (idx *Index) Records() []Record {
	records := make([]Record, 0, len(idx.ids))
	for _, id := range idx.ids {
		records = append(records, Record{ID: id, Sequence: idx.sequences[id]})
	}
	return records
}

// Invalid returns the ids of the records whose sequence contains a
// character outside of the alphabet of the Index kind
func (idx *Index) Invalid() []string {
	var invalid []string
	for _, id := range idx.ids {
		if !alphabet.IsValid(idx.sequences[id], idx.kind) {
			invalid = append(invalid, id)
		}
	}
	return invalid
}
