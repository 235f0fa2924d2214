package pairdata

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/gonum/stat"
)

// Entity names one side of the bipartite pairing.
type Entity string

const (
	EntityTCR  Entity = "tcr"
	EntityPMHC Entity = "pmhc"
)

// Config fixes a dataset's direction and representation modes. Normalizer
// and Resolver are required; a nil Sampler selects the bundled
// StratifiedSampler.
type Config struct {
	Source Entity
	Target Entity

	UseMHC        bool
	UsePseudo     bool
	UseCDR3       bool
	UseBothChains bool
	Verbose       bool

	Normalizer Normalizer
	Resolver   AlleleResolver
	Sampler    Sampler
}

// Dataset accumulates TCR:pMHC pairings from tabular rows. The two parallel
// lists hold one entry per observed pairing, in row order; entities are
// deduplicated on load, so rows naming the same receptor or ligand alias
// the same canonical instance and enrich it in place. Loading is additive
// and may be invoked once per source file.
//
// All mutation happens during sequential row processing; a Dataset is not
// safe for concurrent loads.
type Dataset struct {
	cfg Config

	TCRs  []*TCR
	PMHCs []*PMHC

	tcrIndex  map[TCRKey]*TCR
	pmhcIndex map[PMHCKey]*PMHC
}

// New validates the configuration and returns an empty dataset.
func New(cfg Config) (*Dataset, error) {
	if cfg.Source != EntityTCR && cfg.Source != EntityPMHC {
		return nil, fmt.Errorf("source must be %q or %q, got %q", EntityTCR, EntityPMHC, cfg.Source)
	}
	if cfg.Target != EntityTCR && cfg.Target != EntityPMHC {
		return nil, fmt.Errorf("target must be %q or %q, got %q", EntityTCR, EntityPMHC, cfg.Target)
	}
	if cfg.UseMHC {
		// The full-MHC and pseudo-sequence projections are exclusive.
		cfg.UsePseudo = false
	}
	if cfg.Normalizer == nil || cfg.Resolver == nil {
		return nil, fmt.Errorf("normalizer and resolver are required")
	}
	if cfg.Sampler == nil {
		cfg.Sampler = StratifiedSampler{}
	}

	return &Dataset{
		cfg:       cfg,
		tcrIndex:  make(map[TCRKey]*TCR),
		pmhcIndex: make(map[PMHCKey]*PMHC),
	}, nil
}

// Len returns the number of stored TCR:pMHC pairs.
func (d *Dataset) Len() int {
	if len(d.TCRs) != len(d.PMHCs) {
		panic("pairdata: parallel pair lists out of sync")
	}
	return len(d.TCRs)
}

func (d *Dataset) String() string {
	return fmt.Sprintf("TCR:pMHC dataset of N=%d. Mode: %s -> %s.", d.Len(), d.cfg.Source, d.cfg.Target)
}

// Config returns the dataset's configuration.
func (d *Dataset) Config() Config {
	return d.cfg
}

// Pair returns the i-th stored pairing.
func (d *Dataset) Pair(i int) (*TCR, *PMHC) {
	return d.TCRs[i], d.PMHCs[i]
}

// LoadRecords constructs, deduplicates and cross-links one TCR and one pMHC
// per record. A record whose TCR or pMHC cannot be constructed is skipped;
// no partial pairs are ever stored.
func (d *Dataset) LoadRecords(recs []Record) {
	before := d.Len()

	useCDR3a := d.cfg.UseCDR3 && d.cfg.UseBothChains
	useTRB := !d.cfg.UseCDR3
	useTRA := !d.cfg.UseCDR3 && d.cfg.UseBothChains

	for i, rec := range recs {
		tcr, err := NewTCR(TCRInput{
			CDR3b:   rec.CDR3b,
			TRBV:    rec.TRBV,
			TRBJ:    rec.TRBJ,
			TRBD:    rec.TRBD,
			TRBFull: rec.TRBFull,
			CDR3a:   rec.CDR3a,
			TRAV:    rec.TRAV,
			TRAJ:    rec.TRAJ,
			TRAD:    rec.TRAD,
			TRAFull: rec.TRAFull,

			UseCDR3b: d.cfg.UseCDR3,
			UseCDR3a: useCDR3a,
			UseTRB:   useTRB,
			UseTRA:   useTRA,
		}, d.cfg.Normalizer)
		if err != nil {
			if d.cfg.Verbose {
				log.Printf("skipping row %d: TCR(CDR3b:%q TRBV:%q TRBJ:%q): %v", i, rec.CDR3b, rec.TRBV, rec.TRBJ, err)
			}
			continue
		}

		pmhc, err := NewPMHC(PMHCInput{
			Peptide:     rec.Epitope,
			Allele:      rec.Allele,
			UsePseudo:   d.cfg.UsePseudo,
			UseMHC:      d.cfg.UseMHC,
			EagerImpute: true,
		}, d.cfg.Normalizer, d.cfg.Resolver)
		if err != nil {
			if d.cfg.Verbose {
				log.Printf("skipping row %d: pMHC(Epitope:%q Allele:%q): %v", i, rec.Epitope, rec.Allele, err)
			}
			continue
		}

		// Substitute the canonical instances before cross-linking, so the
		// ownership sets only ever hold canonical pointers.
		if canonical, ok := d.tcrIndex[tcr.Key()]; ok {
			tcr = canonical
		} else {
			d.tcrIndex[tcr.Key()] = tcr
		}
		if canonical, ok := d.pmhcIndex[pmhc.Key()]; ok {
			pmhc = canonical
		} else {
			d.pmhcIndex[pmhc.Key()] = pmhc
		}

		tcr.AddReference(rec.Reference...)
		tcr.AddPMHC(pmhc)
		pmhc.AddReference(rec.Reference...)
		pmhc.AddTCR(tcr)

		d.TCRs = append(d.TCRs, tcr)
		d.PMHCs = append(d.PMHCs, pmhc)
	}

	log.Printf("Loaded %d TCR:pMHC pairs from %d rows of data.", d.Len()-before, len(recs))
}

// LoadCSV reads a delimited table from path and loads it. The file may be
// comma or tab delimited and may be gzip/zip/xz/zlib/bzip2 compressed. A
// missing file is reported and skipped rather than treated as fatal.
func (d *Dataset) LoadCSV(path string) error {
	path = ExpandHome(path)

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		log.Printf("file not found: %s", path)
		return nil
	}
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	r, err := maybeDecompress(f)
	if err != nil {
		return pfx.Err(err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return pfx.Err(err)
	}

	recs, err := parseRecords(data)
	if err != nil {
		return pfx.Err(err)
	}

	d.LoadRecords(recs)
	return nil
}

func parseRecords(data []byte) ([]Record, error) {
	delim := DetermineDelimiter(bytes.NewReader(data))

	header, err := csv.NewReader(bytes.NewReader(data)).Read()
	if err != nil {
		return nil, err
	}
	if delim != ',' {
		r := csv.NewReader(bytes.NewReader(data))
		r.Comma = delim
		if header, err = r.Read(); err != nil {
			return nil, err
		}
	}
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, col := range RequiredColumns {
		if !present[col] {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.Comma = delim
		r.LazyQuotes = true
		return r
	})

	var rows []*Record
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, err
	}

	recs := make([]Record, len(rows))
	for i, row := range rows {
		recs[i] = *row
	}
	return recs, nil
}

// Table exports one record per stored pair. Fields come straight off the
// pair's entities, never re-derived; the Reference column carries the
// pMHC's citation collection.
func (d *Dataset) Table() []Record {
	recs := make([]Record, d.Len())
	for i := range recs {
		tcr, pmhc := d.TCRs[i], d.PMHCs[i]
		recs[i] = Record{
			CDR3a:     tcr.CDR3a,
			CDR3b:     tcr.CDR3b,
			TRAV:      tcr.TRAV,
			TRBV:      tcr.TRBV,
			TRAJ:      tcr.TRAJ,
			TRBJ:      tcr.TRBJ,
			TRAD:      tcr.TRAD,
			TRBD:      tcr.TRBD,
			TRAFull:   tcr.TRAFull,
			TRBFull:   tcr.TRBFull,
			Epitope:   pmhc.Peptide,
			Allele:    pmhc.Allele,
			Pseudo:    pmhc.Pseudo,
			MHC:       pmhc.MHC,
			Reference: sortedSet(pmhc.References()),
		}
	}
	return recs
}

// WriteCSV writes the exported table to path.
func (d *Dataset) WriteCSV(path string) error {
	f, err := os.Create(ExpandHome(path))
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	recs := d.Table()
	ptrs := make([]*Record, len(recs))
	for i := range recs {
		ptrs[i] = &recs[i]
	}

	if err := gocsv.MarshalFile(&ptrs, f); err != nil {
		return pfx.Err(err)
	}
	return nil
}

// Mapping groups each canonical source entity's display string to the
// sorted, deduplicated display strings of its targets.
func (d *Dataset) Mapping() map[string][]string {
	sets := make(map[string]map[string]struct{})

	if d.cfg.Source == EntityTCR {
		for _, tcr := range d.tcrIndex {
			src := tcr.String()
			if sets[src] == nil {
				sets[src] = make(map[string]struct{})
			}
			for pmhc := range tcr.PMHCs() {
				sets[src][pmhc.String()] = struct{}{}
			}
		}
	} else {
		for _, pmhc := range d.pmhcIndex {
			src := pmhc.String()
			if sets[src] == nil {
				sets[src] = make(map[string]struct{})
			}
			for tcr := range pmhc.TCRs() {
				sets[src][tcr.String()] = struct{}{}
			}
		}
	}

	out := make(map[string][]string, len(sets))
	for src, trgs := range sets {
		out[src] = sortedSet(trgs)
	}
	return out
}

// PMHCsByTCR groups the canonical receptors to their cognate ligands,
// sorted by display string.
func (d *Dataset) PMHCsByTCR() map[*TCR][]*PMHC {
	out := make(map[*TCR][]*PMHC, len(d.tcrIndex))
	for _, tcr := range d.tcrIndex {
		pmhcs := make([]*PMHC, 0, len(tcr.PMHCs()))
		for p := range tcr.PMHCs() {
			pmhcs = append(pmhcs, p)
		}
		sort.Slice(pmhcs, func(i, j int) bool { return pmhcs[i].String() < pmhcs[j].String() })
		out[tcr] = pmhcs
	}
	return out
}

// TCRsByPMHC groups the canonical ligands to their cognate receptors,
// sorted by display string.
func (d *Dataset) TCRsByPMHC() map[*PMHC][]*TCR {
	out := make(map[*PMHC][]*TCR, len(d.pmhcIndex))
	for _, pmhc := range d.pmhcIndex {
		tcrs := make([]*TCR, 0, len(pmhc.TCRs()))
		for t := range pmhc.TCRs() {
			tcrs = append(tcrs, t)
		}
		sort.Slice(tcrs, func(i, j int) bool { return tcrs[i].String() < tcrs[j].String() })
		out[pmhc] = tcrs
	}
	return out
}

// SourceStrings projects the stored pairs' source side, in pair order.
func (d *Dataset) SourceStrings() []string {
	out := make([]string, d.Len())
	for i := range out {
		if d.cfg.Source == EntityTCR {
			out[i] = d.TCRs[i].String()
		} else {
			out[i] = d.PMHCs[i].String()
		}
	}
	return out
}

// TargetStrings projects the stored pairs' target side, in pair order.
func (d *Dataset) TargetStrings() []string {
	out := make([]string, d.Len())
	for i := range out {
		if d.cfg.Target == EntityPMHC {
			out[i] = d.PMHCs[i].String()
		} else {
			out[i] = d.TCRs[i].String()
		}
	}
	return out
}

// Summary describes the dataset: pair count, unique entity counts, and the
// spread of pairs per allele.
func (d *Dataset) Summary() string {
	counts := make(map[string]int)
	for _, pmhc := range d.PMHCs {
		counts[pmhc.Allele]++
	}
	perAllele := make([]float64, 0, len(counts))
	for _, n := range counts {
		perAllele = append(perAllele, float64(n))
	}

	mean, sd := 0.0, 0.0
	if len(perAllele) > 0 {
		mean = stat.Mean(perAllele, nil)
	}
	// StdDev needs at least two observations to avoid NaN.
	if len(perAllele) > 1 {
		sd = stat.StdDev(perAllele, nil)
	}

	return fmt.Sprintf("%s %d unique TCRs, %d unique pMHCs, %d alleles, %.1f+/-%.1f pairs per allele.",
		d.String(), len(d.tcrIndex), len(d.pmhcIndex), len(counts), mean, sd)
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
