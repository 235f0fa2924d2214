package hla

import (
	"embed"
	"encoding/csv"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
)

//go:embed lookups/hla_full_seqs.csv lookups/hla_pseudo_seqs.csv
var lookups embed.FS

// Reference tables keyed by canonical two-field allele. Loaded once at
// process start; read-only afterwards.
var (
	fullSeqs   = mustLoadTable("lookups/hla_full_seqs.csv")
	pseudoSeqs = mustLoadTable("lookups/hla_pseudo_seqs.csv")
)

func mustLoadTable(name string) map[string]string {
	f, err := lookups.Open(name)
	if err != nil {
		panic(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		panic(err)
	}

	table := make(map[string]string, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		table[row[0]] = row[1]
	}
	return table
}

// KnownSequence reports whether a canonical two-field allele has a full
// reference sequence.
func KnownSequence(allele string) bool {
	_, ok := fullSeqs[allele]
	return ok
}

var repairForm = regexp.MustCompile(`^HLA-([ABC])\*(\d+)(?::(\d+))?(?::\d+)?$`)

// repair rewrites an inconsistently formatted allele string toward the
// canonical LOCUS*GROUP:PROTEIN shape. If the protein number is absent it
// scans candidates 1 through 10 against the known-sequence table and takes
// the lowest match; imputed reports whether the fallback default of protein
// 1 was used without a table match.
func repair(raw string) (out string, imputed bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if !strings.HasPrefix(s, "HLA-") {
		s = "HLA-" + s
	}
	if len(s) > 5 && strings.IndexByte("ABC", s[4]) >= 0 && s[5] != '*' {
		s = s[:5] + "*" + s[5:]
	}

	m := repairForm.FindStringSubmatch(s)
	if m == nil {
		return s, false
	}

	locus := m[1]
	group, _ := strconv.Atoi(m[2])
	if m[3] != "" {
		protein, _ := strconv.Atoi(m[3])
		return fmt.Sprintf("HLA-%s*%02d:%02d", locus, group, protein), false
	}

	for protein := 1; protein <= 10; protein++ {
		candidate := fmt.Sprintf("HLA-%s*%02d:%02d", locus, group, protein)
		if KnownSequence(candidate) {
			return candidate, false
		}
	}
	return fmt.Sprintf("HLA-%s*%02d:01", locus, group), true
}

// Resolve turns a raw allele string into its canonical two-field form,
// repairing inconsistent formatting where needed. In eager mode a raw
// string that fails to parse is repaired rather than rejected; a parse that
// yields only a serogroup is repaired in either mode. A serogroup whose
// protein scan finds no entry in the reference table is rejected rather
// than defaulted to a fabricated protein 1, so "HLA-B2" is an error. The
// returned string retains any mutation annotation.
func Resolve(raw string, eager bool) (string, error) {
	a, err := Parse(raw)
	if err == nil && a.Specific() {
		return a.TwoField().String(), nil
	}
	if err != nil && !eager {
		return "", err
	}

	repaired, imputed := repair(raw)
	b, err := Parse(repaired)
	if err != nil {
		return "", err
	}
	if !b.Specific() {
		return "", fmt.Errorf("%w: %q (repaired to %q)", ErrUnrecognizedAllele, raw, repaired)
	}
	two := b.TwoField()
	if imputed && !KnownSequence(two.String()) {
		return "", fmt.Errorf("%w: no reference for imputed allele %q (from %q)", ErrUnrecognizedAllele, two.String(), raw)
	}
	return two.String(), nil
}

// CheckMutations reports whether every mutation's expected original residue
// matches the sequence at its position. Positions are 0-based indexes into
// seq.
func CheckMutations(muts []Mutation, seq string) bool {
	for _, m := range muts {
		if m.Pos < 0 || m.Pos >= len(seq) {
			return false
		}
		if seq[m.Pos] != m.From {
			return false
		}
	}
	return true
}

// ApplyMutations substitutes each mutation's replacement residue at its
// 0-based position, always against the original sequence, so mutations do
// not compound positionally.
func ApplyMutations(muts []Mutation, seq string) string {
	out := []byte(seq)
	for _, m := range muts {
		out[m.Pos] = m.To
	}
	return string(out)
}

// signalPeptideOffset shifts mutation coordinates past the signal peptide
// region when the annotation was made against the mature protein.
const signalPeptideOffset = 23

func shifted(muts []Mutation, offset int) []Mutation {
	out := make([]Mutation, len(muts))
	for i, m := range muts {
		m.Pos += offset
		out[i] = m
	}
	return out
}

// SequenceFor returns the full reference sequence for a canonical allele,
// with any annotated point mutations applied. Lookups never fail hard: an
// unknown allele logs a notice and yields the empty string, and mutations
// that cannot be aligned under either offset scheme leave the reference
// sequence untouched.
func SequenceFor(allele string) string {
	base := strings.Fields(allele)[0]
	seq, ok := fullSeqs[base]
	if !ok {
		log.Printf("hla: no full-sequence reference for %s, returning blank sequence", base)
		return ""
	}

	a, err := Parse(allele)
	if err != nil || len(a.Mutations) == 0 {
		return seq
	}

	// Nomenclature positions are 1-based; try the plain 0-indexed scheme
	// first, then the signal-peptide-adjusted one.
	for _, offset := range []int{-1, signalPeptideOffset} {
		muts := shifted(a.Mutations, offset)
		if CheckMutations(muts, seq) {
			return ApplyMutations(muts, seq)
		}
	}

	log.Printf("hla: could not align mutations to reference for %s, defaulting to reference sequence", allele)
	return seq
}

// PseudoFor returns the fixed-length pseudo-sequence for a canonical
// allele. Pseudo-sequences are treated as invariant to point mutations;
// unknown alleles log a notice and yield the empty string.
func PseudoFor(allele string) string {
	base := strings.Fields(allele)[0]
	pseudo, ok := pseudoSeqs[base]
	if !ok {
		log.Printf("hla: no pseudo-sequence reference for %s, returning blank sequence", base)
		return ""
	}
	return pseudo
}

// Resolver bundles the package-level resolution functions behind the
// interface pairdata expects.
type Resolver struct{}

func (Resolver) Resolve(raw string, eager bool) (string, error) { return Resolve(raw, eager) }
func (Resolver) Sequence(allele string) string                  { return SequenceFor(allele) }
func (Resolver) Pseudo(allele string) string                    { return PseudoFor(allele) }
