// Package alphabet stores the residue sets accepted for
// nucleotide and protein sequences.
//
// Both sets accept the gap '-' and stop '*' symbols. 'T' belongs to
// both sets (thymine and threonine), so a sequence made only of shared
// symbols validates under either kind.
package alphabet

import (
	"fmt"
	"strings"
	"unicode"
)

// Kind is the molecule type of a sequence
type Kind uint8

const (
	// Nucleotide is DNA or RNA data
	Nucleotide Kind = iota
	// Protein is amino acid data
	Protein
)

var residues = map[Kind]string{
	Nucleotide: "AUTCG-*",
	Protein:    "GALMFWKQESPVICYHRNDT-*",
}

// lookup tables indexed by the upper-cased ASCII symbol
var tables = map[Kind]*[128]bool{
	Nucleotide: newTable(residues[Nucleotide]),
	Protein:    newTable(residues[Protein]),
}

func newTable(symbols string) *[128]bool {
	var t [128]bool
	for i := 0; i < len(symbols); i++ {
		t[symbols[i]] = true
	}
	return &t
}

var kindNames = map[string]Kind{
	"dna":        Nucleotide,
	"rna":        Nucleotide,
	"nucl":       Nucleotide,
	"nucleotide": Nucleotide,
	"protein":    Protein,
	"prot":       Protein,
	"aa":         Protein,
}

// ParseKind returns the Kind matching name. Matching is case insensitive,
// so "DNA", "dna" and "Nucleotide" all select Nucleotide.
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown molecule kind: %s", name)
	}
	return k, nil
}

func (k Kind) String() string {
	switch k {
	case Nucleotide:
		return "nucleotide"
	case Protein:
		return "protein"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// UnmarshalFlag implements the go-flags Unmarshaler interface
func (k *Kind) UnmarshalFlag(value string) error {
	parsed, err := ParseKind(value)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalFlag implements the go-flags Marshaler interface
func (k Kind) MarshalFlag() (string, error) {
	if _, ok := residues[k]; !ok {
		return "", fmt.Errorf("invalid molecule kind: %d", uint8(k))
	}
	return k.String(), nil
}

// MarshalText implements encoding.TextMarshaler
func (k Kind) MarshalText() ([]byte, error) {
	s, err := k.MarshalFlag()
	return []byte(s), err
}

// UnmarshalText implements encoding.TextUnmarshaler
func (k *Kind) UnmarshalText(text []byte) error {
	return k.UnmarshalFlag(string(text))
}

// Residues returns the symbols allowed for kind
func Residues(kind Kind) (string, error) {
	r, ok := residues[kind]
	if !ok {
		return "", fmt.Errorf("invalid molecule kind: %d", uint8(kind))
	}
	return r, nil
}

// IsValid reports whether every character of sequence belongs to the
// alphabet of kind. Characters are upper-cased before the lookup, and the
// scan stops at the first unknown character. An empty sequence is valid,
// an unknown kind never is.
func IsValid(sequence string, kind Kind) bool {

	table, ok := tables[kind]
	if !ok {
		return false
	}
	for _, r := range sequence {
		r = unicode.ToUpper(r)
		if r >= 128 || !table[r] {
			return false
		}
	}
	return true
}
