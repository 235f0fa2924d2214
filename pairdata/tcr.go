package pairdata

import (
	"fmt"
	"strconv"
	"strings"
)

// TCR is a T cell receptor observed in paired binding data. The identity
// fields are fixed at construction, after normalization; the cognate pMHC
// and reference collections keep growing as more rows naming the same
// receptor are loaded.
type TCR struct {
	// Beta chain.
	CDR3b   string
	TRBV    string
	TRBJ    string
	TRBD    string
	TRBFull string

	// Alpha chain, all optional.
	CDR3a   string
	TRAV    string
	TRAJ    string
	TRAD    string
	TRAFull string

	// Representation flags for String.
	UseCDR3b bool
	UseCDR3a bool
	UseTRB   bool
	UseTRA   bool

	pmhcs map[*PMHC]struct{}
	refs  map[string]struct{}
}

// TCRKey is the semantic identity of a receptor. Two TCRs agreeing on these
// four fields are the same entity for merge purposes, whatever their other
// fields hold.
type TCRKey struct {
	CDR3b string
	TRBV  string
	TRBJ  string
	CDR3a string
}

// TCRInput is the raw, unnormalized material for a TCR.
type TCRInput struct {
	CDR3b   string
	TRBV    string
	TRBJ    string
	TRBD    string
	TRBFull string

	CDR3a   string
	TRAV    string
	TRAJ    string
	TRAD    string
	TRAFull string

	UseCDR3b bool
	UseCDR3a bool
	UseTRB   bool
	UseTRA   bool

	// Optional seed values for the mutable collections.
	PMHC      *PMHC
	Reference string
}

// NewTCR normalizes every supplied field and validates the result. The
// required fields CDR3b, TRBV and TRBJ must survive normalization;
// optional fields that fail normalization are silently dropped.
func NewTCR(in TCRInput, norm Normalizer) (*TCR, error) {
	t := &TCR{
		UseCDR3b: in.UseCDR3b,
		UseCDR3a: in.UseCDR3a,
		UseTRB:   in.UseTRB,
		UseTRA:   in.UseTRA,
		TRBFull:  in.TRBFull,
		TRAFull:  in.TRAFull,
		pmhcs:    make(map[*PMHC]struct{}),
		refs:     make(map[string]struct{}),
	}

	if (t.UseTRB || t.UseTRA) && (t.UseCDR3a || t.UseCDR3b) {
		return nil, fmt.Errorf("%w: use_trb=%t use_tra=%t use_cdr3a=%t use_cdr3b=%t",
			ErrConfiguration, t.UseTRB, t.UseTRA, t.UseCDR3a, t.UseCDR3b)
	}

	// Required fields surface their normalization problems through the
	// final validation error; optional fields fail quietly to "".
	t.CDR3b, _ = normJunction(norm, in.CDR3b)
	t.TRBV, _ = normGene(norm, in.TRBV)
	t.TRBJ, _ = normGene(norm, in.TRBJ)
	t.TRBD, _ = normGene(norm, in.TRBD)
	t.CDR3a, _ = normJunction(norm, in.CDR3a)
	t.TRAV, _ = normGene(norm, in.TRAV)
	t.TRAJ, _ = normGene(norm, in.TRAJ)
	t.TRAD, _ = normGene(norm, in.TRAD)

	if t.CDR3b == "" || t.TRBV == "" || t.TRBJ == "" {
		return nil, fmt.Errorf("%w: need valid CDR3b, TRBV and TRBJ, got CDR3b:%q TRBV:%q TRBJ:%q",
			ErrValidation, in.CDR3b, in.TRBV, in.TRBJ)
	}

	if in.PMHC != nil {
		t.AddPMHC(in.PMHC)
	}
	if in.Reference != "" {
		t.AddReference(in.Reference)
	}

	return t, nil
}

func normJunction(norm Normalizer, seq string) (string, error) {
	if strings.TrimSpace(seq) == "" {
		return "", nil
	}
	return norm.Junction(seq, false)
}

func normGene(norm Normalizer, gene string) (string, error) {
	if strings.TrimSpace(gene) == "" {
		return "", nil
	}
	return norm.Gene(gene)
}

// Key extracts the semantic identity used for registry lookup and equality.
func (t *TCR) Key() TCRKey {
	return TCRKey{CDR3b: t.CDR3b, TRBV: t.TRBV, TRBJ: t.TRBJ, CDR3a: t.CDR3a}
}

// AddPMHC records a cognate pMHC. Insertion is idempotent.
func (t *TCR) AddPMHC(p *PMHC) {
	t.pmhcs[p] = struct{}{}
}

// PMHCs returns the live set of cognate pMHCs; callers observe later
// additions.
func (t *TCR) PMHCs() map[*PMHC]struct{} {
	return t.pmhcs
}

// AddReference records one or more provenance citations.
func (t *TCR) AddReference(refs ...string) {
	for _, r := range refs {
		if r != "" {
			t.refs[r] = struct{}{}
		}
	}
}

// References returns the live set of provenance citations.
func (t *TCR) References() map[string]struct{} {
	return t.refs
}

// String is the display projection used for tokenization, selected by the
// representation flags. Both CDR3 chains active joins them with an
// underscore; no flag at all defaults to the CDR3b sequence.
func (t *TCR) String() string {
	switch {
	case t.UseCDR3b && t.UseCDR3a:
		return t.CDR3b + "_" + t.CDR3a
	case t.UseCDR3b:
		return t.CDR3b
	case t.UseCDR3a:
		return t.CDR3a
	case t.UseTRB && t.UseTRA:
		return t.TRBFull + "_" + t.TRAFull
	case t.UseTRB:
		return t.TRBFull
	case t.UseTRA:
		return t.TRAFull
	default:
		return t.CDR3b
	}
}

// IdentityString is a fixed-field, fully labeled rendering of the receptor,
// independent of the display flags. ParseTCRIdentity reconstructs an equal
// receptor from it.
func (t *TCR) IdentityString() string {
	return fmt.Sprintf("TCR{cdr3a:%s;cdr3b:%s;trav:%s;trbv:%s;traj:%s;trbj:%s;trad:%s;trbd:%s;tra:%s;trb:%s;use_cdr3b:%t;use_cdr3a:%t;use_trb:%t;use_tra:%t}",
		t.CDR3a, t.CDR3b, t.TRAV, t.TRBV, t.TRAJ, t.TRBJ, t.TRAD, t.TRBD, t.TRAFull, t.TRBFull,
		t.UseCDR3b, t.UseCDR3a, t.UseTRB, t.UseTRA)
}

// ParseTCRIdentity rebuilds a receptor from its IdentityString. The result
// is a fresh instance with empty cognate and reference collections.
func ParseTCRIdentity(s string, norm Normalizer) (*TCR, error) {
	body := strings.TrimSuffix(strings.TrimPrefix(s, "TCR{"), "}")
	if body == s {
		return nil, fmt.Errorf("not a TCR identity string: %q", s)
	}

	in := TCRInput{}
	for _, field := range strings.Split(body, ";") {
		name, value, ok := cutIdentityField(field)
		if !ok {
			return nil, fmt.Errorf("malformed identity field %q", field)
		}
		switch name {
		case "cdr3a":
			in.CDR3a = value
		case "cdr3b":
			in.CDR3b = value
		case "trav":
			in.TRAV = value
		case "trbv":
			in.TRBV = value
		case "traj":
			in.TRAJ = value
		case "trbj":
			in.TRBJ = value
		case "trad":
			in.TRAD = value
		case "trbd":
			in.TRBD = value
		case "tra":
			in.TRAFull = value
		case "trb":
			in.TRBFull = value
		case "use_cdr3b":
			in.UseCDR3b, _ = strconv.ParseBool(value)
		case "use_cdr3a":
			in.UseCDR3a, _ = strconv.ParseBool(value)
		case "use_trb":
			in.UseTRB, _ = strconv.ParseBool(value)
		case "use_tra":
			in.UseTRA, _ = strconv.ParseBool(value)
		default:
			return nil, fmt.Errorf("unknown identity field %q", name)
		}
	}

	return NewTCR(in, norm)
}

func cutIdentityField(field string) (name, value string, ok bool) {
	i := strings.Index(field, ":")
	if i < 0 {
		return "", "", false
	}
	return field[:i], field[i+1:], true
}
