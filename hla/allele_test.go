package hla

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	for _, v := range []struct {
		in   string
		want string
	}{
		{"A*02:01", "HLA-A*02:01"},
		{"HLA-A*02:01", "HLA-A*02:01"},
		{"hla-a*02:01", "HLA-A*02:01"},
		{"HLA-A0201", "HLA-A*02:01"},
		{"A0101", "HLA-A*01:01"},
		{"B080102", "HLA-B*08:01:02"},
		{"HLA-A*02:01:01:02", "HLA-A*02:01:01:02"},
		{"HLA-A*2:1", "HLA-A*02:01"},
		{"HLA-B*08:01 N80I mutant", "HLA-B*08:01 N80I mutant"},
		{"HLA-A*02:01 K66A E63Q mutant", "HLA-A*02:01 K66A E63Q mutant"},
	} {
		a, err := Parse(v.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", v.in, err)
		}
		if got := a.String(); got != v.want {
			t.Fatalf("Parse(%q) = %q, want %q", v.in, got, v.want)
		}
	}
}

func TestParseSerogroup(t *testing.T) {
	a, err := Parse("HLA-A2")
	if err != nil {
		t.Fatal(err)
	}
	if a.Specific() {
		t.Fatalf("serogroup HLA-A2 should not be specific: %+v", a)
	}
	if a.Locus != "A" || len(a.Fields) != 1 || a.Fields[0] != 2 {
		t.Fatalf("unexpected serogroup parse: %+v", a)
	}
}

func TestParseMutations(t *testing.T) {
	a, err := Parse("HLA-B*35:08 Q65A T69A Q155A mutant")
	if err != nil {
		t.Fatal(err)
	}
	want := []Mutation{{65, 'Q', 'A'}, {69, 'T', 'A'}, {155, 'Q', 'A'}}
	if len(a.Mutations) != len(want) {
		t.Fatalf("got %d mutations, want %d", len(a.Mutations), len(want))
	}
	for i, m := range a.Mutations {
		if m != want[i] {
			t.Fatalf("mutation %d = %+v, want %+v", i, m, want[i])
		}
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "notanallele", "HLA-A*", "HLA-A*second:01", "HLA-B*08:01 N80 mutant"} {
		if a, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) = %+v, want error", in, a)
		} else if !errors.Is(err, ErrUnrecognizedAllele) {
			t.Fatalf("Parse(%q): error %v does not wrap ErrUnrecognizedAllele", in, err)
		}
	}
}

func TestTwoField(t *testing.T) {
	a, err := Parse("HLA-A*02:01:01:02")
	if err != nil {
		t.Fatal(err)
	}
	if got := a.TwoField().String(); got != "HLA-A*02:01" {
		t.Fatalf("TwoField = %q, want HLA-A*02:01", got)
	}
}

func TestMutationString(t *testing.T) {
	m := Mutation{Pos: 80, From: 'N', To: 'I'}
	if got := m.String(); got != "N80I" {
		t.Fatalf("Mutation.String = %q, want N80I", got)
	}
}
