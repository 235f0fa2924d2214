package pairdata

import (
	"fmt"
	"strings"
)

// ReferenceList is the Reference column: a pair can be supported by several
// citations, carried as a collection and serialized semicolon-joined.
type ReferenceList []string

// MarshalCSV implements the gocsv field marshaller.
func (r ReferenceList) MarshalCSV() (string, error) {
	return strings.Join(r, ";"), nil
}

// UnmarshalCSV implements the gocsv field unmarshaller.
func (r *ReferenceList) UnmarshalCSV(s string) error {
	*r = nil
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			*r = append(*r, part)
		}
	}
	return nil
}

// Record is one row of the tabular schema, both on input and on export.
// Only CDR3b, TRBV, TRBJ, Epitope, Allele and Reference are required on
// input; every other column defaults to empty.
type Record struct {
	CDR3a     string        `csv:"CDR3a"`
	CDR3b     string        `csv:"CDR3b"`
	TRAV      string        `csv:"TRAV"`
	TRBV      string        `csv:"TRBV"`
	TRAJ      string        `csv:"TRAJ"`
	TRBJ      string        `csv:"TRBJ"`
	TRAD      string        `csv:"TRAD"`
	TRBD      string        `csv:"TRBD"`
	TRAFull   string        `csv:"TRA_stitched"`
	TRBFull   string        `csv:"TRB_stitched"`
	Epitope   string        `csv:"Epitope"`
	Allele    string        `csv:"Allele"`
	Pseudo    string        `csv:"Pseudo"`
	MHC       string        `csv:"MHC"`
	Reference ReferenceList `csv:"Reference"`
}

// RequiredColumns are the input columns that must be present in a loaded
// table.
var RequiredColumns = []string{"CDR3b", "TRBV", "TRBJ", "Epitope", "Allele", "Reference"}

// Column returns the named column's exported string value.
func (r Record) Column(name string) (string, error) {
	switch name {
	case "CDR3a":
		return r.CDR3a, nil
	case "CDR3b":
		return r.CDR3b, nil
	case "TRAV":
		return r.TRAV, nil
	case "TRBV":
		return r.TRBV, nil
	case "TRAJ":
		return r.TRAJ, nil
	case "TRBJ":
		return r.TRBJ, nil
	case "TRAD":
		return r.TRAD, nil
	case "TRBD":
		return r.TRBD, nil
	case "TRA_stitched":
		return r.TRAFull, nil
	case "TRB_stitched":
		return r.TRBFull, nil
	case "Epitope":
		return r.Epitope, nil
	case "Allele":
		return r.Allele, nil
	case "Pseudo":
		return r.Pseudo, nil
	case "MHC":
		return r.MHC, nil
	case "Reference":
		s, _ := r.Reference.MarshalCSV()
		return s, nil
	}
	return "", fmt.Errorf("no column %q", name)
}

// groupKeyDelimiter joins column values into a composite group key.
const groupKeyDelimiter = "::"

// GroupKey builds the composite key used for group-wise splitting.
func (r Record) GroupKey(columns []string) (string, error) {
	parts := make([]string, len(columns))
	for i, col := range columns {
		v, err := r.Column(col)
		if err != nil {
			return "", err
		}
		parts[i] = v
	}
	return strings.Join(parts, groupKeyDelimiter), nil
}
