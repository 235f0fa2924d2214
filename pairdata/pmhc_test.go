package pairdata

import (
	"errors"
	"strings"
	"testing"

	"github.com/immunotype/pairset/hla"
	"github.com/immunotype/pairset/imgt"
)

const a0201Pseudo = "YFAMYGEKVAHTHVDTLYVRYHYYTWAVLAYTWY"

func TestNewPMHCNormalizesAndResolves(t *testing.T) {
	p, err := NewPMHC(PMHCInput{
		Peptide: "GilgFVfTL",
		Allele:  "HLA-A0201",
	}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}

	if p.Peptide != "GILGFVFTL" {
		t.Errorf("Peptide = %q", p.Peptide)
	}
	if p.Allele != "HLA-A*02:01" {
		t.Errorf("Allele = %q", p.Allele)
	}
	if p.RawAllele != "HLA-A0201" {
		t.Errorf("RawAllele = %q", p.RawAllele)
	}
	if p.Pseudo != a0201Pseudo {
		t.Errorf("Pseudo = %q", p.Pseudo)
	}
	if len(p.MHC) == 0 || !strings.HasPrefix(p.MHC, "MAVMAPRTLVLLLSGALALTQ") {
		t.Errorf("MHC sequence not derived at construction: %q", p.MHC)
	}
}

func TestNewPMHCRejectsBadInput(t *testing.T) {
	if _, err := NewPMHC(PMHCInput{Peptide: "GILG1FTL", Allele: "HLA-A*02:01"},
		imgt.Standard{}, hla.Resolver{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad peptide: err = %v, want ErrValidation", err)
	}
	if _, err := NewPMHC(PMHCInput{Peptide: "GILGFVFTL", Allele: "HLA-B2", EagerImpute: true},
		imgt.Standard{}, hla.Resolver{}); !errors.Is(err, hla.ErrUnrecognizedAllele) {
		t.Fatalf("unresolvable allele: err = %v, want ErrUnrecognizedAllele", err)
	}
}

func TestNewPMHCEagerImpute(t *testing.T) {
	p, err := NewPMHC(PMHCInput{
		Peptide:     "GILGFVFTL",
		Allele:      "A2",
		EagerImpute: true,
	}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Allele != "HLA-A*02:01" {
		t.Fatalf("Allele = %q, want HLA-A*02:01", p.Allele)
	}
}

func TestNewPMHCUnknownSequenceIsNotFatal(t *testing.T) {
	p, err := NewPMHC(PMHCInput{
		Peptide: "GILGFVFTL",
		Allele:  "HLA-A*11:01",
	}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if p.MHC != "" || p.Pseudo != "" {
		t.Fatalf("missing reference entries should yield blank sequences, got MHC:%q Pseudo:%q", p.MHC, p.Pseudo)
	}
}

func TestPMHCString(t *testing.T) {
	for _, v := range []struct {
		usePseudo bool
		useMHC    bool
		want      string
	}{
		{false, false, "GILGFVFTL"},
		{true, false, "GILGFVFTL[SEP]YFAMYGEKVAHTHVDTLYVRYHYYTWAVLAYTWY"},
	} {
		p, err := NewPMHC(PMHCInput{
			Peptide:   "GILGFVFTL",
			Allele:    "HLA-A*02:01",
			UsePseudo: v.usePseudo,
			UseMHC:    v.useMHC,
		}, imgt.Standard{}, hla.Resolver{})
		if err != nil {
			t.Fatal(err)
		}
		if got := p.String(); got != v.want {
			t.Fatalf("String() = %q, want %q", got, v.want)
		}
	}

	p, err := NewPMHC(PMHCInput{
		Peptide: "GILGFVFTL",
		Allele:  "HLA-A*02:01",
		UseMHC:  true,
	}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.String(), "GILGFVFTL"+Sep+p.MHC; got != want {
		t.Fatalf("full-MHC String() = %q, want %q", got, want)
	}
}

func TestPMHCKeyMergesAlleleAliases(t *testing.T) {
	a, err := NewPMHC(PMHCInput{Peptide: "GILGFVFTL", Allele: "HLA-A0201"}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewPMHC(PMHCInput{Peptide: "gilgfvftl", Allele: "A*02:01"}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Key() != b.Key() {
		t.Fatalf("allele aliases should share a key: %+v vs %+v", a.Key(), b.Key())
	}

	c, err := NewPMHC(PMHCInput{Peptide: "GILGFVFTL", Allele: "HLA-B*08:01"}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if a.Key() == c.Key() {
		t.Fatalf("different alleles should not share a key")
	}
}

func TestPMHCCollections(t *testing.T) {
	p, err := NewPMHC(PMHCInput{Peptide: "GILGFVFTL", Allele: "HLA-A*02:01"}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}

	tcr := &TCR{CDR3b: "CASSIRSSYEQYF"}
	p.AddTCR(tcr)
	p.AddTCR(tcr)
	if len(p.TCRs()) != 1 {
		t.Fatalf("AddTCR should be idempotent, set has %d entries", len(p.TCRs()))
	}

	p.AddReference("PMID:1", "PMID:1", "PMID:2")
	if len(p.References()) != 2 {
		t.Fatalf("references = %v", p.References())
	}
}

func TestPMHCIdentityRoundTrip(t *testing.T) {
	p, err := NewPMHC(PMHCInput{
		Peptide:   "GILGFVFTL",
		Allele:    "HLA-A*02:01",
		UsePseudo: true,
	}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}

	back, err := ParsePMHCIdentity(p.IdentityString(), imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if back.Key() != p.Key() {
		t.Fatalf("round trip changed identity: %+v vs %+v", back.Key(), p.Key())
	}
	if back.IdentityString() != p.IdentityString() {
		t.Fatalf("round trip changed identity string:\n%s\n%s", back.IdentityString(), p.IdentityString())
	}
}

func TestPMHCIdentityRetainsMutations(t *testing.T) {
	p, err := NewPMHC(PMHCInput{
		Peptide: "FLRGRAYGL",
		Allele:  "HLA-B*08:01 N80I mutant",
	}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Allele != "HLA-B*08:01 N80I mutant" {
		t.Fatalf("Allele = %q, mutation annotation lost", p.Allele)
	}

	base, err := NewPMHC(PMHCInput{Peptide: "FLRGRAYGL", Allele: "HLA-B*08:01"}, imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if p.Key() == base.Key() {
		t.Fatalf("mutant and wild-type should differ in resolved sequence identity")
	}

	back, err := ParsePMHCIdentity(p.IdentityString(), imgt.Standard{}, hla.Resolver{})
	if err != nil {
		t.Fatal(err)
	}
	if back.Key() != p.Key() {
		t.Fatalf("mutant identity round trip changed key")
	}
}
