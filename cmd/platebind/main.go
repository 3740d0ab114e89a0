// Command platebind generates load-data CSV manifests binding microscopy
// image records to their illumination correction artifacts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"platebind/internal/adapters/manifests"
	"platebind/internal/blob"
	"platebind/internal/core"
	"platebind/internal/ingest"
	"platebind/internal/infra/persistence/memory"
	"platebind/internal/infra/persistence/postgres"
	"platebind/internal/infra/persistence/sqlite"
	"platebind/pkg/domain"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "platebind: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("platebind", flag.ContinueOnError)
	var (
		imagesDir    = fs.String("images-dir", "", "directory of acquisition image files (required)")
		illumDir     = fs.String("illum-dir", "", "directory of illumination correction artifacts")
		metadataJSON = fs.String("metadata-json", "", "acquisition metadata JSON file (required)")
		outputDir    = fs.String("output-dir", ".", "directory receiving generated manifests")
		groupBy      = fs.String("group-by", "batch,plate", "comma-separated metadata keys for grouping")
		joinBy       = fs.String("join-by", "batch,plate", "comma-separated candidate join keys")
		workers      = fs.Int("workers", 4, "parallel group synthesis workers")
		siteStride   = fs.Int("site-stride", 0, "keep every Nth distinct site (0 keeps all)")
		frames       = fs.Bool("frames", false, "emit Frame_Orig columns for multi-channel files")
		subdirs      = fs.Bool("subdirs", false, "rewrite original-file cells with imgN/ staging subdirectories")
		fileLists    = fs.Bool("file-lists", false, "write <group>_files.json staging lists")
		runStore     = fs.String("run-store", "memory", "run record store: memory|sqlite|postgres")
		storePath    = fs.String("store-path", "", "sqlite path or postgres DSN for -run-store")
		archive      = fs.Bool("archive", false, "mirror manifests into the blob store (PLATEBIND_BLOB_* env)")
		tracePath    = fs.String("trace", "", "write pipeline trace spans as JSON lines to this file")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *imagesDir == "" || *metadataJSON == "" {
		fs.Usage()
		return fmt.Errorf("-images-dir and -metadata-json are required")
	}

	ctx := context.Background()

	meta, err := ingest.LoadMetadata(*metadataJSON)
	if err != nil {
		return err
	}
	images, err := ingest.ScanImages(*imagesDir, meta)
	if err != nil {
		return err
	}
	var corrections []domain.CorrectionArtifact
	if *illumDir != "" {
		corrections, err = ingest.ScanCorrections(*illumDir, meta)
		if err != nil {
			return err
		}
	}

	writer, err := manifests.NewWriter(*outputDir)
	if err != nil {
		return err
	}

	cfg := manifests.Config{
		Writer:  writer,
		Metrics: core.NewExpvarMetricsRecorder(""),
		GroupBy: splitKeys(*groupBy),
		JoinBy:  splitKeys(*joinBy),
		Workers: *workers,
		Synthesis: core.SynthesisOptions{
			SiteStride:    *siteStride,
			IncludeFrames: *frames,
			AssignSubdirs: *subdirs,
		},
		FileLists: *fileLists,
	}

	if *tracePath != "" {
		traceFile, err := os.Create(*tracePath)
		if err != nil {
			return fmt.Errorf("open trace file: %w", err)
		}
		defer func() { _ = traceFile.Close() }()
		cfg.Tracer = core.NewJSONTracer(traceFile)
	}

	if *archive {
		store, err := blob.Open(ctx)
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		cfg.Archive = store
	}

	runs, err := openRunStore(*runStore, *storePath)
	if err != nil {
		return err
	}
	defer func() { _ = runs.Close() }()
	cfg.Runs = runs

	gen, err := manifests.NewGenerator(cfg)
	if err != nil {
		return err
	}

	record, err := gen.Run(ctx, images, corrections)
	if err != nil {
		return err
	}
	printSummary(record)
	return nil
}

func openRunStore(kind, path string) (domain.RunStore, error) {
	switch kind {
	case "memory", "":
		return memory.NewStore(), nil
	case "sqlite":
		return sqlite.NewStore(path)
	case "postgres":
		return postgres.NewStore(path)
	default:
		return nil, fmt.Errorf("unknown run store %s", kind)
	}
}

func splitKeys(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func printSummary(record domain.RunRecord) {
	succeeded, unmatched, failed := 0, 0, 0
	for _, outcome := range record.Groups {
		switch outcome.Status {
		case domain.GroupStatusSucceeded:
			succeeded++
		case domain.GroupStatusUnmatched:
			unmatched++
		case domain.GroupStatusFailed:
			failed++
		}
	}
	fmt.Printf("run %s: %d manifests written, %d unmatched, %d failed\n", record.ID, succeeded, unmatched, failed)
	for _, outcome := range record.Groups {
		switch outcome.Status {
		case domain.GroupStatusSucceeded:
			fmt.Printf("  %s -> %s\n", outcome.GroupID, outcome.ManifestKey)
		default:
			fmt.Printf("  %s: %s %s\n", outcome.GroupID, outcome.Status, outcome.Error)
		}
	}
}
