package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/soltixdb/kcluster/internal/analytics"
	"github.com/soltixdb/kcluster/internal/config"
	"github.com/soltixdb/kcluster/internal/logging"
	"github.com/soltixdb/kcluster/internal/services"
)

func main() {
	op := flag.String("op", services.OpKSimple, "Operation ("+strings.Join(services.Operations, ", ")+")")
	input := flag.String("input", "-", "CSV file of value or time,value rows (- for stdin)")
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	verbose := flag.Bool("v", false, "Log each run to stderr")

	k := flag.Int("k", 2, "Number of clusters")
	seeds := flag.Int("seeds", 0, "Seeding trials (0 uses the configured default)")
	updates := flag.Int("updates", 0, "Update passes per trial (0 uses the configured default)")
	rank := flag.Int("rank", -1, "kplusplus size rank, -1 for the largest cluster")
	target := flag.Float64("target", 0, "knear target value")
	minCount := flag.Int("min-count", 1, "knear minimum cluster size")
	middle := flag.Float64("middle", 0.5, "kdynamic central fraction")
	perc := flag.Float64("perc", 0.5, "kband central fraction")
	sdevs := flag.Float64("sdevs", 0, "Outlier band width in standard deviations (0 uses the configured default)")
	num := flag.Int("num", 1, "kbig number of breaks")
	threshold := flag.Float64("threshold", 0.5, "Adjacency relative difference threshold")
	seed := flag.Uint64("seed", 0, "Random seed (0 draws one)")
	seeder := flag.String("seeder", "", "Seeding strategy for -op run (default kplusplus)")

	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)

	logger := logging.NewNop()
	if *verbose {
		logger = logging.NewDevelopment()
	}

	values, points, err := openAndRead(*input)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	req := &services.ClusterRequest{
		Points:    points,
		K:         *k,
		Seeds:     *seeds,
		Updates:   *updates,
		Rank:      rank,
		MinCount:  *minCount,
		Target:    *target,
		Middle:    middle,
		Perc:      perc,
		SDevs:     *sdevs,
		Num:       *num,
		Threshold: *threshold,
		Seeder:    *seeder,
	}
	if values != nil {
		req.Values = values
	}
	if *seed != 0 {
		req.Seed = seed
	}

	svc := services.NewClusterService(logger, cfg.Clustering)
	result, err := svc.Execute(context.Background(), *op, req)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("Error writing result: %v\n", err)
	}
}

func openAndRead(path string) ([]float64, analytics.TimeSeriesData, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	return readInput(r)
}
