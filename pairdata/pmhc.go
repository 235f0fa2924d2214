package pairdata

import (
	"fmt"
	"strconv"
	"strings"
)

// Sep is the literal separator between the peptide and MHC projections in a
// pMHC display string. Downstream tokenizers depend on this exact token.
const Sep = "[SEP]"

// PMHC is a peptide presented by an HLA allele. The raw allele string is
// resolved to its canonical two-field form at construction, along with the
// full reference sequence (mutations applied) and the pseudo-sequence; all
// three are immutable afterwards. The cognate TCR and reference collections
// keep growing as rows are loaded.
type PMHC struct {
	Peptide   string
	RawAllele string
	// Allele is the canonical two-field form, mutation annotation retained.
	Allele string
	// MHC is the full reference sequence with mutations applied, "" when
	// the allele has no reference entry.
	MHC string
	// Pseudo is the fixed-length binding-groove pseudo-sequence, "" when
	// absent from the reference table.
	Pseudo string

	UsePseudo   bool
	UseMHC      bool
	EagerImpute bool

	tcrs map[*TCR]struct{}
	refs map[string]struct{}
}

// PMHCKey is the semantic identity of a pMHC: the normalized peptide and
// the resolved full sequence. Two instances with textually different raw
// alleles but the same resolved sequence are the same entity.
type PMHCKey struct {
	Peptide string
	MHC     string
}

// PMHCInput is the raw material for a pMHC.
type PMHCInput struct {
	Peptide string
	Allele  string

	UsePseudo   bool
	UseMHC      bool
	EagerImpute bool

	// Optional seed values for the mutable collections.
	CognateTCR *TCR
	Reference  string
}

// NewPMHC normalizes the peptide, resolves the allele and derives the
// reference sequences eagerly, so an unresolvable identity fails here
// rather than on first use. Sequence lookups that miss resolve to "" and
// are not an error.
func NewPMHC(in PMHCInput, norm Normalizer, res AlleleResolver) (*PMHC, error) {
	p := &PMHC{
		RawAllele:   in.Allele,
		UsePseudo:   in.UsePseudo,
		UseMHC:      in.UseMHC,
		EagerImpute: in.EagerImpute,
		tcrs:        make(map[*TCR]struct{}),
		refs:        make(map[string]struct{}),
	}

	peptide, err := norm.Peptide(in.Peptide)
	if err != nil {
		return nil, fmt.Errorf("%w: peptide %q: %v", ErrValidation, in.Peptide, err)
	}
	p.Peptide = peptide

	allele, err := res.Resolve(in.Allele, in.EagerImpute)
	if err != nil {
		return nil, fmt.Errorf("pMHC for peptide %q: %w", in.Peptide, err)
	}
	p.Allele = allele
	p.MHC = res.Sequence(allele)
	p.Pseudo = res.Pseudo(allele)

	if in.CognateTCR != nil {
		p.AddTCR(in.CognateTCR)
	}
	if in.Reference != "" {
		p.AddReference(in.Reference)
	}

	return p, nil
}

// Key extracts the semantic identity used for registry lookup and equality.
func (p *PMHC) Key() PMHCKey {
	return PMHCKey{Peptide: p.Peptide, MHC: p.MHC}
}

// AddTCR records a cognate receptor. Insertion is idempotent.
func (p *PMHC) AddTCR(t *TCR) {
	p.tcrs[t] = struct{}{}
}

// TCRs returns the live set of cognate receptors.
func (p *PMHC) TCRs() map[*TCR]struct{} {
	return p.tcrs
}

// AddReference records one or more provenance citations.
func (p *PMHC) AddReference(refs ...string) {
	for _, r := range refs {
		if r != "" {
			p.refs[r] = struct{}{}
		}
	}
}

// References returns the live set of provenance citations.
func (p *PMHC) References() map[string]struct{} {
	return p.refs
}

// String is the display projection: peptide[SEP]mhc in full-MHC mode,
// peptide[SEP]pseudo in pseudo mode, bare peptide otherwise.
func (p *PMHC) String() string {
	switch {
	case p.UseMHC:
		return p.Peptide + Sep + p.MHC
	case p.UsePseudo:
		return p.Peptide + Sep + p.Pseudo
	default:
		return p.Peptide
	}
}

// IdentityString is a fixed-field, fully labeled rendering, independent of
// the display flags. ParsePMHCIdentity reconstructs an equal pMHC from it.
func (p *PMHC) IdentityString() string {
	return fmt.Sprintf("PMHC{peptide:%s;allele:%s;use_pseudo:%t;use_mhc:%t;eager:%t}",
		p.Peptide, p.Allele, p.UsePseudo, p.UseMHC, p.EagerImpute)
}

// ParsePMHCIdentity rebuilds a pMHC from its IdentityString. The result is
// a fresh instance with empty cognate and reference collections.
func ParsePMHCIdentity(s string, norm Normalizer, res AlleleResolver) (*PMHC, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "PMHC{"), "}")
	if body == s {
		return nil, fmt.Errorf("not a PMHC identity string: %q", s)
	}

	in := PMHCInput{}
	for _, field := range strings.Split(body, ";") {
		name, value, ok := cutIdentityField(field)
		if !ok {
			return nil, fmt.Errorf("malformed identity field %q", field)
		}
		switch name {
		case "peptide":
			in.Peptide = value
		case "allele":
			in.Allele = value
		case "use_pseudo":
			in.UsePseudo, _ = strconv.ParseBool(value)
		case "use_mhc":
			in.UseMHC, _ = strconv.ParseBool(value)
		case "eager":
			in.EagerImpute, _ = strconv.ParseBool(value)
		default:
			return nil, fmt.Errorf("unknown identity field %q", name)
		}
	}

	return NewPMHC(in, norm, res)
}
