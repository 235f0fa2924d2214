package imgt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// geneForm matches a cleaned-up TR gene symbol: segment prefix, family
// number, optional gene member after a dash, optional /DV designation, and
// an optional allele designator after the asterisk.
var geneForm = regexp.MustCompile(`^(TR[AB][VDJ])0*(\d+)(?:-0*(\d+))?(?:/DV0*(\d+))?(?:\*0*(\d+))?$`)

// Highest plausible family number per segment type. Symbols beyond these are
// typos or non-IMGT identifiers, not genes.
var maxFamily = map[string]int{
	"TRAV": 41,
	"TRAJ": 61,
	"TRAD": 3,
	"TRBV": 30,
	"TRBJ": 2,
	"TRBD": 2,
}

// Gene standardizes a TR gene-segment name to IMGT form at allele precision.
// Leading zeros in family and member numbers are dropped and the allele
// designator is padded to two digits, so TRBJ2-07*1 becomes TRBJ2-7*01.
func Gene(gene string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(gene))
	s = strings.ReplaceAll(s, " ", "")
	// Common synonym prefixes seen in older submissions.
	s = strings.Replace(s, "TCRB", "TRB", 1)
	s = strings.Replace(s, "TCRA", "TRA", 1)
	s = strings.Replace(s, "TCR", "TR", 1)

	m := geneForm.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("unrecognized TR gene %q", gene)
	}

	prefix := m[1]
	family, _ := strconv.Atoi(m[2])
	if limit := maxFamily[prefix]; family < 1 || family > limit {
		return "", fmt.Errorf("no %s family %d (from %q)", prefix, family, gene)
	}

	out := fmt.Sprintf("%s%d", prefix, family)
	if m[3] != "" {
		member, _ := strconv.Atoi(m[3])
		out = fmt.Sprintf("%s-%d", out, member)
	}
	if m[4] != "" {
		dv, _ := strconv.Atoi(m[4])
		out = fmt.Sprintf("%s/DV%d", out, dv)
	}
	if m[5] != "" {
		allele, _ := strconv.Atoi(m[5])
		out = fmt.Sprintf("%s*%02d", out, allele)
	}

	return out, nil
}

// Standard is the bundled normalizer. It satisfies the pairdata Normalizer
// interface.
type Standard struct{}

func (Standard) Peptide(seq string) (string, error)               { return Peptide(seq) }
func (Standard) Junction(seq string, strict bool) (string, error) { return Junction(seq, strict) }
func (Standard) Gene(gene string) (string, error)                 { return Gene(gene) }
