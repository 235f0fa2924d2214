// pairsplit partitions a paired TCR:pMHC table into train and test sets,
// stratified by allele or held out by group (e.g. no epitope shared between
// the partitions).
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/immunotype/pairset/hla"
	"github.com/immunotype/pairset/imgt"
	"github.com/immunotype/pairset/pairdata"
)

func main() {
	var input, trainOut, testOut, splitOn string
	var testFraction float64
	var seed int64
	var balance, verbose bool
	flag.StringVar(&input, "in", "", "Path to the paired CSV/TSV file (may be gzip/zip/xz compressed).")
	flag.StringVar(&trainOut, "train", "", "Path for the train partition CSV.")
	flag.StringVar(&testOut, "test", "", "Path for the test partition CSV.")
	flag.Float64Var(&testFraction, "test-size", 0.2, "Fraction of the data assigned to the test partition.")
	flag.StringVar(&splitOn, "split-on", "", "Comma-separated column names whose combinations must not be shared between partitions, e.g. 'Epitope' or 'Epitope,Allele'.")
	flag.BoolVar(&balance, "balance", true, "Stratify the row-level split by allele.")
	flag.Int64Var(&seed, "seed", 42, "Random seed for the split.")
	flag.BoolVar(&verbose, "verbose", false, "Warn about every skipped row.")
	flag.Parse()

	if input == "" || trainOut == "" || testOut == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	ds, err := pairdata.New(pairdata.Config{
		Source:     pairdata.EntityTCR,
		Target:     pairdata.EntityPMHC,
		UsePseudo:  true,
		UseCDR3:    true,
		Verbose:    verbose,
		Normalizer: imgt.Standard{},
		Resolver:   hla.Resolver{},
	})
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}

	if err := ds.LoadCSV(input); err != nil {
		log.Fatalln(pfx.Err(err))
	}
	log.Println(ds.Summary())

	var groupBy []string
	if splitOn != "" {
		for _, col := range strings.Split(splitOn, ",") {
			groupBy = append(groupBy, strings.TrimSpace(col))
		}
	}

	train, test, err := ds.Split(pairdata.SplitOptions{
		TestFraction:    testFraction,
		BalanceByAllele: balance,
		GroupBy:         groupBy,
		Seed:            seed,
	})
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}
	log.Println("train:", train.Summary())
	log.Println("test:", test.Summary())

	if err := train.WriteCSV(trainOut); err != nil {
		log.Fatalln(pfx.Err(err))
	}
	if err := test.WriteCSV(testOut); err != nil {
		log.Fatalln(pfx.Err(err))
	}
}
