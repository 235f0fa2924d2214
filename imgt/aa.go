// Package imgt standardizes amino-acid sequences and IMGT T cell receptor
// gene names the way curated repertoire databases expect them: single-letter
// uppercase residues, gene symbols like TRBV19*01 or TRBJ2-7*01.
package imgt

import (
	"fmt"
	"strings"
)

// Alphabet is the fixed vocabulary of the twenty standard amino acids.
const Alphabet = "ACDEFGHIKLMNPQRSTVWY"

func validResidue(b byte) bool {
	return strings.IndexByte(Alphabet, b) >= 0
}

// Peptide standardizes an amino-acid sequence strictly: whitespace is
// trimmed, residues are uppercased, and any symbol outside the twenty-letter
// alphabet is an error.
func Peptide(seq string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(seq))
	if s == "" {
		return "", fmt.Errorf("empty amino-acid sequence")
	}
	for i := 0; i < len(s); i++ {
		if !validResidue(s[i]) {
			return "", fmt.Errorf("invalid residue %q in sequence %q", s[i], seq)
		}
	}

	return s, nil
}

// Junction standardizes a CDR3 junction sequence. In strict mode the
// sequence must already carry the canonical frame (leading C, trailing F or
// W); otherwise the frame residues are added.
func Junction(seq string, strict bool) (string, error) {
	s, err := Peptide(seq)
	if err != nil {
		return "", err
	}

	framed := s[0] == 'C' && (s[len(s)-1] == 'F' || s[len(s)-1] == 'W')
	if framed {
		return s, nil
	}
	if strict {
		return "", fmt.Errorf("junction %q lacks the canonical C...F/W frame", seq)
	}

	return "C" + s + "F", nil
}
