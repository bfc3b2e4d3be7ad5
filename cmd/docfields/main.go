package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/app"
	"github.com/joseph-ayodele/docfields/internal/common"
	"github.com/joseph-ayodele/docfields/internal/export"
	"github.com/joseph-ayodele/docfields/internal/ingest"
	"github.com/joseph-ayodele/docfields/internal/pipeline"
)

func main() {
	var (
		envFile  = flag.String("env", ".env", "dotenv file to load")
		docType  = flag.String("type", "", "force a document type for -stdin input (invoice, purchase_order, resume, id_card, general)")
		xlsxOut  = flag.String("xlsx", "", "also write the results to this XLSX file")
		stdin    = flag.Bool("stdin", false, "read raw text from stdin instead of files")
		persist  = flag.Bool("store", false, "save results to the configured database")
		keepText = flag.Bool("text", false, "include page text in the output")
		hidden   = flag.Bool("hidden", false, "include hidden files when a directory is given")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: docfields [flags] <file|dir>...\n       docfields -stdin [-type T] < text\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := common.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, cfg.Log)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	paths, err := ingest.ExpandPaths(flag.Args(), ingest.ScanOptions{SkipHidden: !*hidden}, logger)
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}
	v := common.NewValidator().Field("type", *docType, common.DocumentType)
	for _, p := range paths {
		v.Field("file", p, common.FileExtension)
	}
	if err := v.Error(); err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}
	if !*stdin && len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, *persist, logger)
	if err != nil {
		logger.Error("failed to initialise", "error", err)
		os.Exit(1)
	}
	defer a.Close()
	a.Processor.Cfg.KeepText = *keepText

	var (
		results []pipeline.DocumentResult
		failed  int
	)
	if *stdin {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			logger.Error("read stdin", "error", err)
			os.Exit(1)
		}
		var dt constants.DocumentType
		if *docType != "" {
			dt, _ = constants.ParseDocumentType(*docType)
		}
		res, err := a.Processor.ProcessText(ctx, string(text), dt)
		if err != nil {
			logger.Error("extraction failed", "error", err)
			os.Exit(1)
		}
		results = append(results, res)
	} else {
		results, failed = processFiles(ctx, a.Processor, cfg.Extraction.PageWorkers, paths)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.Error("write output", "error", err)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		b, err := export.NewService(nil, logger).ExportXLSX(results)
		if err == nil {
			err = os.WriteFile(*xlsxOut, b, 0o644)
		}
		if err != nil {
			logger.Error("xlsx export failed", "path", *xlsxOut, "error", err)
			os.Exit(1)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// processFiles runs every path through a worker queue and returns the
// results in argument order plus the number of failures.
func processFiles(ctx context.Context, proc *pipeline.Processor, workers int, paths []string) ([]pipeline.DocumentResult, int) {
	q := pipeline.NewQueue(proc, proc.Logger, pipeline.WithWorkers(workers), pipeline.WithQueueSize(len(paths)))
	index := make(map[uuid.UUID]int, len(paths))
	failed := 0
	for i, p := range paths {
		job, err := q.Enqueue(ctx, p)
		if err != nil {
			proc.Logger.Error("enqueue failed", "path", p, "error", err)
			failed++
			continue
		}
		index[job.ID] = i
	}
	go q.Shutdown(context.Background())

	slots := make([]*pipeline.DocumentResult, len(paths))
	for r := range q.Results() {
		if r.Err != nil {
			failed++
			continue
		}
		doc := r.Document
		slots[index[r.Job.ID]] = &doc
	}
	out := make([]pipeline.DocumentResult, 0, len(paths))
	for _, s := range slots {
		if s != nil {
			out = append(out, *s)
		}
	}
	return out, failed
}
