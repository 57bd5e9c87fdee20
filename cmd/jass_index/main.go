// Command jass_index builds a JASS index (the four CIvocab_terms.bin,
// CIvocab.bin, CIpostings.bin, CIdoclist.bin files described in spec.md §6)
// from a TREC, FASTA, or uniCOIL-JSON document collection.
//
// Grounded in the teacher CLI's main.go (signal-driven context
// cancellation, klog fatal-on-error, cli.App construction) and
// cmd-x-index-cid2offset.go's flag/Action layout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"k8s.io/klog/v2"

	"github.com/jass-ir/jass/continuity"
	"github.com/jass-ir/jass/indexer"
	"github.com/jass-ir/jass/indexer/parsers"
	"github.com/jass-ir/jass/vocab"
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
		Name:        "jass_index",
		Description: "build a JASS impact-ordered index from a document collection",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filename", Required: true, Usage: "path to the document collection"},
			&cli.StringFlag{Name: "document-format", Value: "TREC", Usage: "TREC, FASTA, or JSON-uniCOIL"},
			&cli.StringFlag{Name: "output-dir", Value: ".", Usage: "directory to write the four index files into"},
			&cli.StringFlag{Name: "config", Usage: "optional YAML config overriding BM25/quantization/codec defaults"},
			&cli.BoolFlag{Name: "index-v1", Usage: "write the fixed-width JASS-v1 vocabulary pointer format (default is JASS-v2 variable-byte)"},
			&cli.IntFlag{Name: "fasta-kmer", Value: 4, Usage: "k-mer size for FASTA tokenization"},
			&cli.IntFlag{Name: "report-every", Value: 0, Usage: "log progress every N terms processed (0 disables)"},
		},
		Action: func(c *cli.Context) error {
			return runIndex(c)
		},
	}
	sort.Sort(cli.FlagsByName(app.Flags))

	if err := app.RunContext(ctx, os.Args); err != nil {
		klog.Fatal(err)
	}
}

func runIndex(c *cli.Context) error {
	cfg := indexer.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := indexer.LoadConfig(path)
		if err != nil {
			return cli.Exit(err, 1)
		}
		cfg = loaded
	}

	f, err := os.Open(c.String("filename"))
	if err != nil {
		return cli.Exit(fmt.Errorf("jass_index: %w", err), 1)
	}
	defer f.Close()

	b := indexer.NewBuilder()
	switch c.String("document-format") {
	case "TREC":
		docs, err := parsers.ParseTREC(f, parsers.TRECOptions{})
		if err != nil {
			return cli.Exit(err, 1)
		}
		for _, d := range docs {
			b.AddDocument(d)
		}
	case "FASTA":
		docs, err := parsers.ParseFASTA(f, c.Int("fasta-kmer"))
		if err != nil {
			return cli.Exit(err, 1)
		}
		for _, d := range docs {
			b.AddDocument(d)
		}
	case "JSON-uniCOIL":
		docs, err := parsers.ParseUniCOILJSON(f)
		if err != nil {
			return cli.Exit(err, 1)
		}
		for _, d := range docs {
			b.AddWeightedDocument(d)
		}
	default:
		return cli.Exit(fmt.Errorf("jass_index: unknown --document-format %q", c.String("document-format")), 1)
	}

	format := vocab.V2
	if c.Bool("index-v1") || cfg.VocabV1 {
		format = vocab.V1
	}

	reportEvery := c.Int("report-every")
	startedAt := time.Now()

	progress := mpb.New(mpb.WithWidth(64))
	var bar *mpb.Bar
	out, err := b.Build(cfg, format, func(done, total int) {
		if bar == nil {
			bar = progress.AddBar(int64(total),
				mpb.PrependDecorators(decor.Name("quantizing terms")),
				mpb.AppendDecorators(decor.CountersNoUnit("% d / % d")),
			)
		}
		bar.SetCurrent(int64(done))
		if reportEvery > 0 && done%reportEvery == 0 {
			klog.Infof("indexed %d/%d terms", done, total)
		}
	})
	progress.Wait()
	if err != nil {
		return cli.Exit(err, 2)
	}

	outDir := c.String("output-dir")
	// The four files have a natural write order (vocabulary, then
	// postings, then doclist); continuity.IfThen stops at the first
	// failure rather than leaving a partially-written index whose later
	// files silently overwrite an earlier failure's error.
	var total int
	writeFile := func(name string, contents []byte) func() error {
		return func() error {
			if err := os.WriteFile(filepath.Join(outDir, name), contents, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
			total += len(contents)
			return nil
		}
	}
	err = continuity.New().
		Thenf("vocab terms", writeFile("CIvocab_terms.bin", out.VocabTerms)).
		Thenf("vocab pointers", writeFile("CIvocab.bin", out.VocabPointers)).
		Thenf("postings", writeFile("CIpostings.bin", out.Postings)).
		Thenf("doclist", writeFile("CIdoclist.bin", out.Doclist)).
		Err()
	if err != nil {
		return cli.Exit(fmt.Errorf("jass_index: %w", err), 2)
	}

	klog.Infof("wrote %s across 4 files in %s", humanize.Bytes(uint64(total)), time.Since(startedAt))
	return nil
}
