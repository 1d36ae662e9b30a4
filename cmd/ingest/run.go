package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openshelf/ingest/internal/checkpoint"
	"github.com/openshelf/ingest/internal/config"
	"github.com/openshelf/ingest/internal/enrich"
	"github.com/openshelf/ingest/internal/extract"
	"github.com/openshelf/ingest/internal/ocr"
	"github.com/openshelf/ingest/internal/pdf"
	"github.com/openshelf/ingest/internal/pipeline"
	"github.com/openshelf/ingest/internal/scanner"
	"github.com/openshelf/ingest/internal/store"
	"github.com/openshelf/ingest/internal/uploader"
	"github.com/openshelf/ingest/pkg/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run [books|papers] [root-dir]",
	Short: "Run the ingestion pipeline over a directory of documents",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		class, err := parseClass(args[0])
		if err != nil {
			return err
		}
		rootDir := os.Getenv("SHELF_INGEST_ROOT")
		if len(args) > 1 {
			rootDir = args[1]
		}
		if rootDir == "" {
			return fmt.Errorf("root directory is required (argument or SHELF_INGEST_ROOT)")
		}

		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		logger := log.InitLog(log.Level(cfg.Service.LogLevel))
		defer func() { _ = logger.Sync() }()

		// Credentials are job-fatal before any item is scanned.
		if err := cfg.Validate(); err != nil {
			return err
		}

		db, err := store.InitDB(cfg)
		if err != nil {
			return fmt.Errorf("initializing catalog store: %w", err)
		}
		st := store.NewStore(db)
		defer st.Close()

		if err := st.InitialMigration(); err != nil {
			return fmt.Errorf("running initial migration: %w", err)
		}

		objects, err := uploader.NewMinioStore(
			uploader.WithEndpoint(cfg.Storage.Endpoint),
			uploader.WithBucket(cfg.Storage.Bucket),
			uploader.WithAccessKey(cfg.Storage.AccessKey),
			uploader.WithSecretKey(cfg.Storage.SecretKey),
			uploader.WithSSL(cfg.Storage.UseSSL),
			uploader.WithPublicBaseURL(cfg.Storage.PublicBaseUrl),
		)
		if err != nil {
			return fmt.Errorf("initializing object storage: %w", err)
		}

		job := pipeline.Job{
			Class:          class,
			RootDir:        rootDir,
			SkipDuplicates: skipDuplicates,
			AsSubmission:   asSubmission,
			UploadedBy:     uploadedBy,
		}

		var extractor pipeline.Extractor
		var enricher pipeline.Enricher
		delay := cfg.Service.BookDelay
		if class == pipeline.ClassPastPaper {
			extractor = extract.NewPaperExtractor(
				ocr.NewTesseractEngine(),
				func(path string) (extract.PageImager, error) { return pdf.Open(path) },
				cfg.Service.OcrLanguage,
			)
			// OCR-bound runs pace themselves more conservatively.
			delay = cfg.Service.PastPaperDelay
		} else {
			extractor = extract.NewBookExtractor(
				func(path string) (extract.DocumentReader, error) { return pdf.Open(path) },
			)
			enricher = enrich.New(cfg.Lookup.BaseUrl, cfg.Lookup.ApiKey, cfg.Lookup.Timeout)
		}

		errlog, err := pipeline.OpenErrorLog(cfg.Service.StateDir, string(class))
		if err != nil {
			zap.S().Warnf("error log unavailable, failures go to console only: %v", err)
		}
		defer errlog.Close()

		progress := pipeline.NewConsoleProgress(os.Stdout)
		defer progress.Finish()

		pipe := pipeline.New(job,
			scanner.New(".pdf"),
			extractor,
			enricher,
			uploader.New(objects),
			pipeline.NewDedupChecker(st, class),
			pipeline.NewCatalogWriter(st, class, asSubmission, uploadedBy),
			checkpoint.NewStore(checkpoint.PathFor(cfg.Service.StateDir, string(class))),
			pipeline.WithBatchSize(cfg.Service.BatchSize),
			pipeline.WithDelay(delay),
			pipeline.WithErrorLog(errlog),
			pipeline.WithSubscriber(progress),
		)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		stats, err := pipe.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("\ntotal=%d processed=%d successful=%d failed=%d skipped=%d\n",
			stats.Total, stats.Processed, stats.Successful, stats.Failed, stats.Skipped)
		for _, reason := range stats.FailurePreview {
			fmt.Printf("  failed: %s\n", reason)
		}
		return nil
	},
}

func parseClass(arg string) (pipeline.DocumentClass, error) {
	switch arg {
	case "books", "book":
		return pipeline.ClassBook, nil
	case "papers", "paper", "past-papers", "past_paper":
		return pipeline.ClassPastPaper, nil
	default:
		return "", fmt.Errorf("unknown document class %q (want books or papers)", arg)
	}
}
