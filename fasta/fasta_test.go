package fasta_test

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/ShenghuiXue/bioinformatics-hub/alphabet"
	"github.com/ShenghuiXue/bioinformatics-hub/fasta"
)

type parseCase struct {
	Name           string            `json:"name"`
	Input          string            `json:"input"`
	Kind           string            `json:"kind"`
	KeepWhitespace bool              `json:"keepWhitespace"`
	IDs            []string          `json:"ids"`
	Sequences      map[string]string `json:"sequences"`
}

func loadCases(t *testing.T) []parseCase {
	t.Helper()

	data, err := os.ReadFile("testdata/cases.json")
	if err != nil {
		t.Fatal(err)
	}
	var cases []parseCase
	if err := json.Unmarshal(data, &cases); err != nil {
		t.Fatal(err)
	}
	return cases
}

func (c parseCase) parse(t *testing.T) *fasta.Index {
	t.Helper()

	kind := alphabet.Nucleotide
	if c.Kind != "" {
		k, err := alphabet.ParseKind(c.Kind)
		if err != nil {
			t.Fatal(err)
		}
		kind = k
	}
	return fasta.ParseWithOptions(c.Input, kind, fasta.Options{KeepWhitespace: c.KeepWhitespace})
}

func TestParse(t *testing.T) {

	for _, tt := range loadCases(t) {

		test := tt
		t.Run(test.Name, func(t *testing.T) {

			idx := test.parse(t)

			if want, got := len(test.IDs), idx.Size(); want != got {
				t.Errorf("expected %d records but got %d", want, got)
			}
			if want, got := test.IDs, idx.SequenceIDs(); !(len(want) == 0 && len(got) == 0) && !reflect.DeepEqual(want, got) {
				t.Errorf("expected ids %q\nbut got\n%q", want, got)
			}
			for id, want := range test.Sequences {
				got, err := idx.SequenceByID(id)
				if err != nil {
					t.Errorf("lookup %q: %v", id, err)
					continue
				}
				if want != got {
					t.Errorf("sequence %q: expected %q but got %q", id, want, got)
				}
			}
			if want, got := test.Input, idx.Raw(); want != got {
				t.Errorf("raw text was modified: expected %q but got %q", want, got)
			}
		})
	}
}

func TestParseIsIdempotent(t *testing.T) {

	for _, tt := range loadCases(t) {

		test := tt
		t.Run(test.Name, func(t *testing.T) {
			first, second := test.parse(t), test.parse(t)
			if want, got := first.Records(), second.Records(); !reflect.DeepEqual(want, got) {
				t.Errorf("two parses differ:\n%v\n%v", want, got)
			}
		})
	}
}

func TestSampleFile(t *testing.T) {

	f, err := os.Open("testdata/sample.fna")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	idx, err := fasta.Read(f, alphabet.Nucleotide, fasta.Options{})
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile("testdata/sample.json")
	if err != nil {
		t.Fatal(err)
	}
	var expected map[string]string
	if err := json.Unmarshal(data, &expected); err != nil {
		t.Fatal(err)
	}

	if want, got := 3, idx.Size(); want != got {
		t.Fatalf("expected %d records but got %d", want, got)
	}
	if want, got := []string{"Unnamed sequence 1", "Sample sequence 2", "Unnamed sequence 2"}, idx.SequenceIDs(); !reflect.DeepEqual(want, got) {
		t.Errorf("expected ids %q but got %q", want, got)
	}
	if want, got := expected, idx.SequencesWithIDs(); !reflect.DeepEqual(want, got) {
		t.Errorf("unexpected sequences:\n%v", got)
	}
	if want, got := alphabet.Nucleotide, idx.Kind(); want != got {
		t.Errorf("expected kind %v but got %v", want, got)
	}
	if invalid := idx.Invalid(); len(invalid) != 0 {
		t.Errorf("expected only valid sequences, got invalid %q", invalid)
	}
}

func TestSequenceByIDNotFound(t *testing.T) {

	idx := fasta.Parse(">    \n ATATATA", alphabet.Nucleotide)

	for _, id := range []string{"ABCD", "an invalid sequence id", "unnamed sequence 1", " Unnamed sequence 1", ""} {

		_, err := idx.SequenceByID(id)
		if err == nil {
			t.Fatalf("expected an error for id %q", id)
		}
		if want, got := "This sequence id is not valid. sequenceId = "+id, err.Error(); want != got {
			t.Errorf("expected message %q but got %q", want, got)
		}
		var lookupErr *fasta.LookupError
		if !errors.As(err, &lookupErr) {
			t.Errorf("expected a *fasta.LookupError, got %T", err)
		} else if lookupErr.ID != id {
			t.Errorf("expected id %q in error, got %q", id, lookupErr.ID)
		}
	}

	// a failed lookup leaves the index usable
	s, err := idx.SequenceByID("Unnamed sequence 1")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "ATATATA", s; want != got {
		t.Errorf("expected %s but got %s", want, got)
	}
	if want, got := 1, idx.Size(); want != got {
		t.Errorf("expected %d records but got %d", want, got)
	}
}

func TestSequencesWithIDsMatchesLookups(t *testing.T) {

	idx := fasta.Parse("AAA\n>x\nCCC\n>\nGGG\n>x\nTTT\n", alphabet.Nucleotide)

	all := idx.SequencesWithIDs()
	ids := idx.SequenceIDs()

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)

	if !reflect.DeepEqual(keys, sorted) {
		t.Fatalf("keys %q differ from ids %q", keys, sorted)
	}
	for _, id := range ids {
		s, err := idx.SequenceByID(id)
		if err != nil {
			t.Fatal(err)
		}
		if want, got := s, all[id]; want != got {
			t.Errorf("%s: expected %s but got %s", id, want, got)
		}
	}

	// returned collections are copies
	all["x"] = "changed"
	ids[0] = "changed"
	if s, _ := idx.SequenceByID("x"); s != "TTT" {
		t.Errorf("index was modified through SequencesWithIDs: %s", s)
	}
	if idx.SequenceIDs()[0] != "Unnamed sequence 1" {
		t.Errorf("index was modified through SequenceIDs: %q", idx.SequenceIDs())
	}
}

func TestRecord(t *testing.T) {

	idx := fasta.Parse(">a\nAC\n>b\nGT", alphabet.Nucleotide)

	r, err := idx.Record("b")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := (fasta.Record{ID: "b", Sequence: "GT"}), r; want != got {
		t.Errorf("expected %v but got %v", want, got)
	}
	if _, err := idx.Record("c"); err == nil {
		t.Error("expected an error for a missing record")
	}
}

func TestInvalid(t *testing.T) {

	input := ">dna\nACGU\n>prot\nDKDGNGY\n>both\nTTT\n>empty\n"

	tests := []struct {
		kind     alphabet.Kind
		expected []string
	}{
		{alphabet.Nucleotide, []string{"prot"}},
		{alphabet.Protein, []string{"dna"}},
	}

	for _, tt := range tests {
		test := tt
		t.Run(test.kind.String(), func(t *testing.T) {
			idx := fasta.Parse(input, test.kind)
			if want, got := test.expected, idx.Invalid(); !reflect.DeepEqual(want, got) {
				t.Errorf("expected %q but got %q", want, got)
			}
		})
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestReadError(t *testing.T) {

	_, err := fasta.Read(failingReader{}, alphabet.Nucleotide, fasta.Options{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("expected the reader error to be wrapped, got %v", err)
	}
}
