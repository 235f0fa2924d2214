package imgt

import "testing"

func TestPeptide(t *testing.T) {
	for _, v := range []struct {
		in   string
		want string
	}{
		{"GILGFVFTL", "GILGFVFTL"},
		{"GilgFVfTL", "GILGFVFTL"},
		{" NLVPMVATV ", "NLVPMVATV"},
	} {
		got, err := Peptide(v.in)
		if err != nil {
			t.Fatalf("Peptide(%q): %v", v.in, err)
		}
		if got != v.want {
			t.Fatalf("Peptide(%q) = %q, want %q", v.in, got, v.want)
		}
	}
}

func TestPeptideRejectsInvalidResidues(t *testing.T) {
	for _, in := range []string{"", "GILG1FTL", "NLVPMXATV", "SADAB", "GILG FVFTL"} {
		if got, err := Peptide(in); err == nil {
			t.Fatalf("Peptide(%q) = %q, want error", in, got)
		}
	}
}

func TestJunction(t *testing.T) {
	for _, v := range []struct {
		in     string
		strict bool
		want   string
	}{
		{"CASSIRSSYEQYF", true, "CASSIRSSYEQYF"},
		{"cASsIRSsYEqYF", false, "CASSIRSSYEQYF"},
		{"CASSPGQEAGANVLTW", true, "CASSPGQEAGANVLTW"},
		{"SADAF", false, "CSADAFF"},
		{"ASSIRSSYEQY", false, "CASSIRSSYEQYF"},
	} {
		got, err := Junction(v.in, v.strict)
		if err != nil {
			t.Fatalf("Junction(%q, %t): %v", v.in, v.strict, err)
		}
		if got != v.want {
			t.Fatalf("Junction(%q, %t) = %q, want %q", v.in, v.strict, got, v.want)
		}
	}
}

func TestJunctionStrictRequiresFrame(t *testing.T) {
	for _, in := range []string{"SADAF", "ASSIRSSYEQY", "CASSIRSSYEQYA"} {
		if got, err := Junction(in, true); err == nil {
			t.Fatalf("Junction(%q, true) = %q, want error", in, got)
		}
	}
}
