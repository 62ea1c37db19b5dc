// Package main runs many draws against a prize catalog and reports how
// closely the observed frequencies match the configured weights.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/luckydraw/internal/config"
	"github.com/cory-johannsen/luckydraw/internal/game/prize"
	"github.com/cory-johannsen/luckydraw/internal/game/rng"
	"github.com/cory-johannsen/luckydraw/internal/game/wheel"
	"github.com/cory-johannsen/luckydraw/internal/observability"
)

func main() {
	n := flag.Int("n", 100000, "number of draws")
	prizesPath := flag.String("prizes", "", "prize catalog YAML (built-in catalog when empty)")
	seed := flag.Uint64("seed", 0, "seed for a reproducible run (crypto source when 0)")
	level := flag.String("log-level", "warn", "log level")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{Level: *level, Format: "console"})
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	if *n < 1 {
		logger.Fatal("draw count must be positive", zap.Int("n", *n))
	}
	prizes, err := prize.Load(*prizesPath)
	if err != nil {
		logger.Fatal("loading prize catalog", zap.String("path", *prizesPath), zap.Error(err))
	}

	var src rng.Source = rng.NewCryptoSource()
	if *seed != 0 {
		src = rng.NewSeededSource(*seed)
	}

	start := time.Now()
	counts, err := simulate(prizes, src, *n)
	if err != nil {
		logger.Fatal("simulating draws", zap.Error(err))
	}
	logger.Info("simulation complete", zap.Int("draws", *n), zap.Duration("elapsed", time.Since(start)))

	stat, err := wheel.ChiSquared(counts, prize.Weights(prizes))
	if err != nil {
		logger.Fatal("computing chi-squared", zap.Error(err))
	}
	if err := report(os.Stdout, prizes, counts, *n, stat); err != nil {
		logger.Fatal("writing report", zap.Error(err))
	}
}

// simulate returns how often each prize was drawn in n draws.
func simulate(prizes []prize.Prize, src rng.Source, n int) ([]int, error) {
	counts := make([]int, len(prizes))
	for i := 0; i < n; i++ {
		won, err := wheel.Select(prizes, src)
		if err != nil {
			return nil, err
		}
		counts[wheel.IndexOf(prizes, won.ID)]++
	}
	return counts, nil
}

func report(out io.Writer, prizes []prize.Prize, counts []int, n int, stat float64) error {
	total, err := wheel.Total(prizes)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "id\tlabel\tweight\texpected\tobserved\tcount\t")
	for i, p := range prizes {
		fmt.Fprintf(w, "%s\t%s\t%g\t%.3f%%\t%.3f%%\t%d\t\n",
			p.ID, p.Label, p.Weight, 100*p.Weight/total, 100*float64(counts[i])/float64(n), counts[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\nchi-squared = %.4f (df = %d, draws = %d)\n", stat, len(prizes)-1, n)
	return err
}
