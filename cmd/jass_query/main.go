// Command jass_query evaluates bag-of-words queries against a JASS index
// using Score-at-a-Time traversal, writing TREC-run-format output.
//
// Grounded in the teacher CLI's main.go (signal-driven context
// cancellation, klog fatal-on-error, cli.App construction).
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/jass-ir/jass/doclist"
	"github.com/jass-ir/jass/indexmeta"
	"github.com/jass-ir/jass/postings"
	"github.com/jass-ir/jass/query"
	"github.com/jass-ir/jass/trecrun"
	"github.com/jass-ir/jass/vocab"
)

var (
	queriesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jass_query_queries_processed_total",
		Help: "Number of queries processed since process start.",
	})
	postingsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jass_query_postings_processed_total",
		Help: "Number of postings decoded across all processed queries.",
	})
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case <-interrupt:
			fmt.Println()
			klog.Info("received interrupt signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(interrupt)
	}()

	app := &cli.App{
		Name:        "jass_query",
		Description: "evaluate bag-of-words queries against a JASS index",
		ArgsUsage:   "QUERYFILE",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "index-dir", Value: ".", Usage: "directory containing the four index files"},
			&cli.IntFlag{Name: "top-k", Value: 10, Usage: "number of results to report per query"},
			&cli.Uint64Flag{Name: "postings-budget", Usage: "anytime postings budget; 0 means exhaustive mode"},
			&cli.BoolFlag{Name: "decompress-then-process", Usage: "exhaustive mode with the remaining-impact early-exit bound"},
			&cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "number of queries to evaluate concurrently, each on its own accumulator/heap state"},
			&cli.BoolFlag{Name: "stats", Usage: "print per-query elapsed time and postings processed to stderr"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address (e.g. :9090) until the process exits"},
		},
		Action: func(c *cli.Context) error {
			return runQuery(c)
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Fatal(err)
	}
}

func runQuery(c *cli.Context) error {
	queryFile := c.Args().Get(0)
	if queryFile == "" {
		return cli.Exit(fmt.Errorf("jass_query: missing QUERYFILE argument"), 1)
	}

	idx, collectionSize, err := openIndex(c.String("index-dir"))
	if err != nil {
		return cli.Exit(err, 1)
	}

	opts := query.Options{TopK: c.Int("top-k"), Mode: query.ModeExhaustive}
	if c.Uint64("postings-budget") > 0 {
		opts.Mode = query.ModeAnytime
		opts.PostingsBudget = c.Uint64("postings-budget")
	} else if c.Bool("decompress-then-process") {
		opts.Mode = query.ModeEarlyExit
	}

	if addr := c.String("metrics-addr"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			klog.Infof("serving metrics on %s/metrics", addr)
			if err := http.ListenAndServe(addr, mux); err != nil {
				klog.Warningf("metrics server stopped: %v", err)
			}
		}()
	}

	f, err := os.Open(queryFile)
	if err != nil {
		return cli.Exit(fmt.Errorf("jass_query: %w", err), 1)
	}
	defer f.Close()

	type parsedQuery struct {
		qid   string
		terms []string
	}
	var queries []parsedQuery
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			klog.Warningf("jass_query: skipping malformed query line %q", line)
			continue
		}
		queries = append(queries, parsedQuery{qid: fields[0], terms: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return cli.Exit(fmt.Errorf("jass_query: read query file: %w", err), 1)
	}

	// Per spec.md §5, one goroutine per worker owns a private query.Context
	// (accumulator table, heap, scratch decode buffer) allocated once and
	// reused across every query it handles - never per-query. Workers pull
	// query indices off a shared channel and append to their own
	// mutex-free output buffer; the buffers are concatenated by index only
	// after errgroup.Wait(), so the hot path never takes a lock and the
	// written-out order is still deterministic input order.
	workers := c.Int("workers")
	if workers < 1 {
		workers = 1
	}
	clk := clock.New()
	stats := c.Bool("stats")

	type indexedResult struct {
		index   int
		results []query.Result
	}
	perWorker := make([][]indexedResult, workers)

	g, gctx := errgroup.WithContext(c.Context)
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			workerCtx := query.NewContext(idx, opts, collectionSize)
			for i := range jobs {
				started := clk.Now()
				r, err := workerCtx.Run(queries[i].terms)
				if err != nil {
					return fmt.Errorf("query %s: %w", queries[i].qid, err)
				}
				elapsed := clk.Now().Sub(started)
				perWorker[w] = append(perWorker[w], indexedResult{index: i, results: r})
				queriesProcessed.Inc()
				postingsProcessed.Add(float64(workerCtx.LastProcessed()))
				if stats {
					klog.Infof("query %s: %s elapsed, %d postings processed", queries[i].qid, elapsed, workerCtx.LastProcessed())
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for i := range queries {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return cli.Exit(fmt.Errorf("jass_query: %w", err), 2)
	}

	results := make([][]query.Result, len(queries))
	for _, wr := range perWorker {
		for _, r := range wr {
			results[r.index] = r.results
		}
	}

	w := trecrun.NewWriter(os.Stdout)
	for i, q := range queries {
		if err := w.WriteQuery(q.qid, results[i]); err != nil {
			return cli.Exit(err, 2)
		}
	}
	return w.Flush()
}

func openIndex(dir string) (*query.Index, int, error) {
	vocabTerms, err := os.ReadFile(filepath.Join(dir, "CIvocab_terms.bin"))
	if err != nil {
		return nil, 0, fmt.Errorf("jass_query: %w", err)
	}
	vocabPointers, err := os.ReadFile(filepath.Join(dir, "CIvocab.bin"))
	if err != nil {
		return nil, 0, fmt.Errorf("jass_query: %w", err)
	}
	postingsBytes, err := os.ReadFile(filepath.Join(dir, "CIpostings.bin"))
	if err != nil {
		return nil, 0, fmt.Errorf("jass_query: %w", err)
	}

	v, err := vocab.Load(vocabTerms, vocabPointers, vocab.V2)
	if err != nil {
		v, err = vocab.Load(vocabTerms, vocabPointers, vocab.V1)
		if err != nil {
			return nil, 0, fmt.Errorf("jass_query: load vocabulary: %w", err)
		}
	}

	pf, err := postings.Open(postingsBytes)
	if err != nil {
		return nil, 0, fmt.Errorf("jass_query: load postings: %w", err)
	}

	docFile, err := os.Open(filepath.Join(dir, "CIdoclist.bin"))
	if err != nil {
		return nil, 0, fmt.Errorf("jass_query: %w", err)
	}
	dl, err := doclist.Open(docFile)
	if err != nil {
		return nil, 0, fmt.Errorf("jass_query: load doclist: %w", err)
	}

	collectionSize, _ := pf.Meta.GetUint64(indexmeta.KeyCollectionSize)
	return &query.Index{Vocab: v, Postings: pf, Doclist: dl}, int(collectionSize), nil
}
