package pairdata

// Normalizer standardizes raw amino-acid sequences and gene names into
// canonical IMGT form. imgt.Standard is the bundled implementation.
type Normalizer interface {
	// Peptide standardizes an amino-acid sequence strictly.
	Peptide(seq string) (string, error)
	// Junction standardizes a CDR3 junction; non-strict mode repairs a
	// missing C...F/W frame instead of rejecting it.
	Junction(seq string, strict bool) (string, error)
	// Gene standardizes a TR gene-segment name at allele precision.
	Gene(gene string) (string, error)
}

// AlleleResolver resolves raw HLA allele strings to their canonical
// two-field form and to reference sequences. hla.Resolver is the bundled
// implementation.
type AlleleResolver interface {
	// Resolve returns the canonical two-field allele string. Eager mode
	// repairs strings that fail to parse outright.
	Resolve(raw string, eager bool) (string, error)
	// Sequence returns the full reference sequence with mutations applied,
	// or "" when the allele has no reference.
	Sequence(allele string) string
	// Pseudo returns the fixed-length pseudo-sequence, or "" when absent.
	Pseudo(allele string) string
}

// Sampler draws the row-level train/test partition when no grouping columns
// are given. Implementations must be deterministic for a fixed seed.
type Sampler interface {
	Split(recs []Record, testFraction float64, stratifyByAllele bool, seed int64) (train, test []Record)
}
