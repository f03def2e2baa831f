package fasta_test

import (
	"context"
	"os"
	"testing"

	"github.com/ShenghuiXue/bioinformatics-hub/alphabet"
	"github.com/ShenghuiXue/bioinformatics-hub/fasta"
)

func readSample(b *testing.B) string {
	b.Helper()

	data, err := os.ReadFile("testdata/sample.fna")
	if err != nil {
		b.Fatal(err)
	}
	return string(data)
}

func BenchmarkParse(b *testing.B) {

	raw := readSample(b)
	b.SetBytes(int64(len(raw)))
	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		idx := fasta.Parse(raw, alphabet.Nucleotide)
		if idx.Size() != 3 {
			b.Fatalf("expected 3 records, got %d", idx.Size())
		}
	}
}

func BenchmarkCheck(b *testing.B) {

	idx := fasta.Parse(readSample(b), alphabet.Nucleotide)
	ctx := context.Background()
	b.ResetTimer()

	for n := 0; n < b.N; n++ {
		invalid, err := fasta.Check(ctx, idx, 2)
		if err != nil {
			b.Fatal(err)
		}
		if len(invalid) != 0 {
			b.Fatalf("expected no invalid record, got %q", invalid)
		}
	}
}
