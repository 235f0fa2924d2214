package pairdata

import (
	"fmt"
	"math/rand"
	"sort"
)

// SplitOptions governs a train/test partition of the exported table.
type SplitOptions struct {
	// TestFraction is the approximate share of rows assigned to test.
	TestFraction float64
	// BalanceByAllele stratifies the row-level split so the allele
	// distributions of the two partitions approximately match. Ignored
	// when GroupBy is set.
	BalanceByAllele bool
	// GroupBy lists column names whose composite key must not straddle
	// the partition boundary; whole groups go to one side or the other.
	GroupBy []string
	// Seed makes the split deterministic.
	Seed int64
}

// Split partitions the exported table into train and test datasets.
//
// Rows whose allele occurs exactly once in the whole table always go to
// train: a lone example of a rare allele cannot usefully appear in both
// partitions. With grouping columns, unique group keys (not rows) are
// sampled for train, and any key that singleton re-injection puts on both
// sides is reconciled toward train until no key straddles the boundary.
// Each partition is re-loaded through the full normalization and merge
// pipeline, so the returned datasets share no live objects with the parent
// or each other.
func (d *Dataset) Split(opt SplitOptions) (train, test *Dataset, err error) {
	if opt.TestFraction <= 0 || opt.TestFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction must be in (0, 1), got %v", opt.TestFraction)
	}

	recs := d.Table()

	alleleCounts := make(map[string]int)
	for _, rec := range recs {
		alleleCounts[rec.Allele]++
	}
	var singles, rest []Record
	for _, rec := range recs {
		if alleleCounts[rec.Allele] == 1 {
			singles = append(singles, rec)
		} else {
			rest = append(rest, rec)
		}
	}

	var trainRecs, testRecs []Record
	if len(opt.GroupBy) > 0 {
		trainRecs, testRecs, err = splitByGroup(rest, opt)
		if err != nil {
			return nil, nil, err
		}
	} else {
		trainRecs, testRecs = d.cfg.Sampler.Split(rest, opt.TestFraction, opt.BalanceByAllele, opt.Seed)
	}

	trainRecs = append(trainRecs, singles...)

	if len(opt.GroupBy) > 0 {
		trainRecs, testRecs, err = reconcileGroups(trainRecs, testRecs, opt.GroupBy)
		if err != nil {
			return nil, nil, err
		}
	}

	cfg := d.cfg
	cfg.Verbose = false
	if train, err = New(cfg); err != nil {
		return nil, nil, err
	}
	if test, err = New(cfg); err != nil {
		return nil, nil, err
	}
	train.LoadRecords(trainRecs)
	test.LoadRecords(testRecs)

	return train, test, nil
}

// splitByGroup samples unique composite group keys, not rows, so no group
// straddles the boundary.
func splitByGroup(recs []Record, opt SplitOptions) (train, test []Record, err error) {
	keys := make([]string, len(recs))
	seen := make(map[string]struct{})
	var unique []string
	for i, rec := range recs {
		key, err := rec.GroupKey(opt.GroupBy)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = key
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			unique = append(unique, key)
		}
	}

	sort.Strings(unique)
	rng := rand.New(rand.NewSource(opt.Seed))
	rng.Shuffle(len(unique), func(i, j int) {
		unique[i], unique[j] = unique[j], unique[i]
	})

	nTrain := int((1 - opt.TestFraction) * float64(len(unique)))
	trainKeys := make(map[string]struct{}, nTrain)
	for _, key := range unique[:nTrain] {
		trainKeys[key] = struct{}{}
	}

	for i, rec := range recs {
		if _, ok := trainKeys[keys[i]]; ok {
			train = append(train, rec)
		} else {
			test = append(test, rec)
		}
	}
	return train, test, nil
}

// reconcileGroups moves every group key found in both partitions into
// train, repeating until a pass moves nothing, then asserts disjointness.
func reconcileGroups(train, test []Record, groupBy []string) ([]Record, []Record, error) {
	for {
		trainKeys, err := groupKeySet(train, groupBy)
		if err != nil {
			return nil, nil, err
		}

		kept := test[:0]
		moved := false
		for _, rec := range test {
			key, err := rec.GroupKey(groupBy)
			if err != nil {
				return nil, nil, err
			}
			if _, ok := trainKeys[key]; ok {
				train = append(train, rec)
				moved = true
			} else {
				kept = append(kept, rec)
			}
		}
		test = kept

		if !moved {
			break
		}
	}

	trainKeys, err := groupKeySet(train, groupBy)
	if err != nil {
		return nil, nil, err
	}
	testKeys, err := groupKeySet(test, groupBy)
	if err != nil {
		return nil, nil, err
	}
	for key := range testKeys {
		if _, ok := trainKeys[key]; ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrSplitInvariant, key)
		}
	}

	return train, test, nil
}

func groupKeySet(recs []Record, groupBy []string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for _, rec := range recs {
		key, err := rec.GroupKey(groupBy)
		if err != nil {
			return nil, err
		}
		keys[key] = struct{}{}
	}
	return keys, nil
}

// StratifiedSampler is the bundled row-level sampler: a seeded shuffle
// within each allele stratum (or across all rows when not stratifying),
// splitting each at the requested fraction.
type StratifiedSampler struct{}

// Split implements the Sampler interface.
func (StratifiedSampler) Split(recs []Record, testFraction float64, stratifyByAllele bool, seed int64) (train, test []Record) {
	rng := rand.New(rand.NewSource(seed))

	strata := make(map[string][]int)
	if stratifyByAllele {
		for i, rec := range recs {
			strata[rec.Allele] = append(strata[rec.Allele], i)
		}
	} else {
		all := make([]int, len(recs))
		for i := range recs {
			all[i] = i
		}
		strata[""] = all
	}

	names := make([]string, 0, len(strata))
	for name := range strata {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		idx := strata[name]
		rng.Shuffle(len(idx), func(i, j int) {
			idx[i], idx[j] = idx[j], idx[i]
		})
		nTest := int(testFraction*float64(len(idx)) + 0.5)
		for k, i := range idx {
			if k < nTest {
				test = append(test, recs[i])
			} else {
				train = append(train, recs[i])
			}
		}
	}
	return train, test
}
