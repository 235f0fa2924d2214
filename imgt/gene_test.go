package imgt

import "testing"

func TestGene(t *testing.T) {
	for _, v := range []struct {
		in   string
		want string
	}{
		{"TRBV19*01", "TRBV19*01"},
		{"TRBV19*1", "TRBV19*01"},
		{"TRBJ2-07*1", "TRBJ2-7*01"},
		{"trbj2-7*01", "TRBJ2-7*01"},
		{"TCRBV19*01", "TRBV19*01"},
		{"TRAV017*01", "TRAV17*01"},
		{"TRAJ10*01", "TRAJ10*01"},
		{"TRAV38-2/DV8*01", "TRAV38-2/DV8*01"},
		{"TRBV20", "TRBV20"},
		{" TRBJ 2-7 *1 ", "TRBJ2-7*01"},
	} {
		got, err := Gene(v.in)
		if err != nil {
			t.Fatalf("Gene(%q): %v", v.in, err)
		}
		if got != v.want {
			t.Fatalf("Gene(%q) = %q, want %q", v.in, got, v.want)
		}
	}
}

func TestGeneRejectsNonGenes(t *testing.T) {
	for _, in := range []string{"", "TBRFV", "TRBJ42069", "TRBV0*01", "IGHV1-2*02", "TRBV19*01extra"} {
		if got, err := Gene(in); err == nil {
			t.Fatalf("Gene(%q) = %q, want error", in, got)
		}
	}
}
