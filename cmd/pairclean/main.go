// pairclean reads a raw paired TCR:pMHC table, normalizes sequence and gene
// identifiers, deduplicates entities, and writes the canonical table.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/carbocation/pfx"
	"github.com/immunotype/pairset/hla"
	"github.com/immunotype/pairset/imgt"
	"github.com/immunotype/pairset/pairdata"
)

func main() {
	var input, output string
	var useMHC, bothChains, fullChain, verbose bool
	flag.StringVar(&input, "in", "", "Path to the raw paired CSV/TSV file (may be gzip/zip/xz compressed).")
	flag.StringVar(&output, "out", "", "Path for the canonical CSV output.")
	flag.BoolVar(&useMHC, "use-mhc", false, "Project pMHCs with the full MHC sequence instead of the pseudo-sequence.")
	flag.BoolVar(&fullChain, "full-chain", false, "Project TCRs with the stitched full chain instead of the CDR3.")
	flag.BoolVar(&bothChains, "both-chains", false, "Project both alpha and beta chains.")
	flag.BoolVar(&verbose, "verbose", false, "Warn about every skipped row.")
	flag.Parse()

	if input == "" || output == "" {
		flag.PrintDefaults()
		os.Exit(1)
	}

	ds, err := pairdata.New(pairdata.Config{
		Source:        pairdata.EntityTCR,
		Target:        pairdata.EntityPMHC,
		UseMHC:        useMHC,
		UsePseudo:     !useMHC,
		UseCDR3:       !fullChain,
		UseBothChains: bothChains,
		Verbose:       verbose,
		Normalizer:    imgt.Standard{},
		Resolver:      hla.Resolver{},
	})
	if err != nil {
		log.Fatalln(pfx.Err(err))
	}

	if err := ds.LoadCSV(input); err != nil {
		log.Fatalln(pfx.Err(err))
	}
	log.Println(ds.Summary())

	if err := ds.WriteCSV(output); err != nil {
		log.Fatalln(pfx.Err(err))
	}
	log.Println("Wrote", ds.Len(), "pairs to", output)
}
