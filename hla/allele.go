// Package hla parses HLA class I allele nomenclature and resolves alleles
// to reference sequences. Allele strings arrive in wildly inconsistent
// shapes (A*02:01, HLA-A0201, A2, "HLA-B*08:01 N80I mutant"); Parse accepts
// the shapes seen in curated binding databases, and Resolve applies a repair
// heuristic for the rest.
package hla

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnrecognizedAllele reports an allele string that could not be resolved
// to a specific two-field allele, even after repair.
var ErrUnrecognizedAllele = fmt.Errorf("unrecognized HLA allele")

// Mutation is a point substitution in nomenclature coordinates: From at
// 1-based position Pos replaced by To.
type Mutation struct {
	Pos  int
	From byte
	To   byte
}

func (m Mutation) String() string {
	return fmt.Sprintf("%c%d%c", m.From, m.Pos, m.To)
}

// Allele is a structured HLA allele. Fields holds the colon-separated
// numeric designators (group, protein, and any further subtype fields).
type Allele struct {
	Locus     string
	Fields    []int
	Mutations []Mutation
}

// Specific reports whether the allele names a single protein, as opposed to
// a serogroup like HLA-A2.
func (a Allele) Specific() bool {
	return len(a.Fields) >= 2
}

// TwoField truncates the allele to locus + group:protein, dropping subtype
// and variant designators. Mutations are retained.
func (a Allele) TwoField() Allele {
	if len(a.Fields) > 2 {
		a.Fields = a.Fields[:2]
	}
	return a
}

// String renders the canonical nomenclature form, e.g. "HLA-A*02:01" or
// "HLA-B*08:01 N80I mutant".
func (a Allele) String() string {
	var b strings.Builder
	b.WriteString("HLA-")
	b.WriteString(a.Locus)
	b.WriteByte('*')
	for i, f := range a.Fields {
		if i > 0 {
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%02d", f)
	}
	for _, m := range a.Mutations {
		b.WriteByte(' ')
		b.WriteString(m.String())
	}
	if len(a.Mutations) > 0 {
		b.WriteString(" mutant")
	}
	return b.String()
}

var (
	starForm     = regexp.MustCompile(`^([A-Z]+[0-9]*)\*([0-9:]+)$`)
	starlessForm = regexp.MustCompile(`^([A-Z])([0-9]+)$`)
	mutationForm = regexp.MustCompile(`^([A-Z])([0-9]+)([A-Z])$`)
)

// Parse converts a raw allele string into its structured form. A bare
// serogroup such as "HLA-A2" parses successfully but is not Specific. A
// trailing mutation annotation ("K66A E63Q mutant") is parsed into the
// mutation list.
func Parse(raw string) (Allele, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Allele{}, fmt.Errorf("%w: empty string", ErrUnrecognizedAllele)
	}

	tokens := strings.Fields(strings.ToUpper(s))
	body := strings.TrimPrefix(tokens[0], "HLA-")

	var a Allele
	if m := starForm.FindStringSubmatch(body); m != nil {
		a.Locus = m[1]
		for _, part := range strings.Split(m[2], ":") {
			if part == "" {
				return Allele{}, fmt.Errorf("%w: %q", ErrUnrecognizedAllele, raw)
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return Allele{}, fmt.Errorf("%w: %q", ErrUnrecognizedAllele, raw)
			}
			a.Fields = append(a.Fields, n)
		}
	} else if m := starlessForm.FindStringSubmatch(body); m != nil {
		a.Locus = m[1]
		digits := m[2]
		if len(digits) >= 4 && len(digits)%2 == 0 {
			// Legacy starless designation: pairs of digits, e.g. A0101.
			for i := 0; i < len(digits); i += 2 {
				n, _ := strconv.Atoi(digits[i : i+2])
				a.Fields = append(a.Fields, n)
			}
		} else {
			// Serogroup only, e.g. A2 or A24.
			n, _ := strconv.Atoi(digits)
			a.Fields = []int{n}
		}
	} else {
		return Allele{}, fmt.Errorf("%w: %q", ErrUnrecognizedAllele, raw)
	}

	for _, tok := range tokens[1:] {
		if tok == "MUTANT" {
			continue
		}
		m := mutationForm.FindStringSubmatch(tok)
		if m == nil {
			return Allele{}, fmt.Errorf("%w: bad mutation %q in %q", ErrUnrecognizedAllele, tok, raw)
		}
		pos, _ := strconv.Atoi(m[2])
		a.Mutations = append(a.Mutations, Mutation{Pos: pos, From: m[1][0], To: m[3][0]})
	}

	return a, nil
}
