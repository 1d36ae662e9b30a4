// Package pipeline drives the per-item ingestion state machine: extract,
// deduplicate, enrich, upload, write to the catalog, checkpoint. Processing
// is strictly sequential; OCR and lookup services are rate-sensitive and one
// in-flight item trivially keeps them to one concurrent request.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	jitterbug "github.com/lthibault/jitterbug/v2"
	"github.com/openshelf/ingest/internal/checkpoint"
	"github.com/openshelf/ingest/internal/enrich"
	"github.com/openshelf/ingest/internal/extract"
	"github.com/openshelf/ingest/pkg/metrics"
	"go.uber.org/zap"
)

// DocumentClass selects the ingestion variant and its extraction ruleset.
type DocumentClass string

const (
	ClassBook      DocumentClass = "book"
	ClassPastPaper DocumentClass = "past_paper"
)

// failurePreviewLimit caps the failure reasons echoed in final statistics.
const failurePreviewLimit = 10

// Job is the validated configuration of one pipeline run. It holds no
// mutable state; all progress lives in the checkpoint.
type Job struct {
	Class          DocumentClass
	RootDir        string
	SkipDuplicates bool
	AsSubmission   bool
	UploadedBy     string
}

// Scanner enumerates candidate documents.
type Scanner interface {
	Scan(root string) ([]string, error)
}

// Extractor produces best-effort metadata for one document. It degrades
// internally and never fails the item.
type Extractor interface {
	Extract(ctx context.Context, path string) *extract.FieldSet
}

// Enricher augments extracted metadata from the bibliographic service. A nil
// match means "proceed with extraction-only metadata".
type Enricher interface {
	Search(ctx context.Context, identifier, title string) *enrich.Match
	FetchCover(ctx context.Context, coverURL string) ([]byte, string, error)
}

// AssetUploader moves files into durable object storage.
type AssetUploader interface {
	UploadFile(ctx context.Context, key, path, contentType string) (string, error)
	UploadBytes(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Stats are the final aggregate counts of a run.
type Stats struct {
	Total          int
	Processed      int
	Successful     int
	Failed         int
	Skipped        int
	Stopped        bool
	FailurePreview []string
}

// Pipeline is the orchestrator. It is the only component aware of all
// collaborators and the exclusive owner of checkpoint mutation.
type Pipeline struct {
	job         Job
	scanner     Scanner
	extractor   Extractor
	enricher    Enricher
	uploader    AssetUploader
	dedup       DedupChecker
	writer      CatalogWriter
	checkpoints *checkpoint.Store
	errlog      *ErrorLog
	subscribers []Subscriber

	batchSize int
	delay     time.Duration
	stopped   atomic.Bool
	log       *zap.SugaredLogger
}

type Option func(*Pipeline)

func WithSubscriber(s Subscriber) Option {
	return func(p *Pipeline) { p.subscribers = append(p.subscribers, s) }
}

func WithBatchSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

func WithDelay(d time.Duration) Option {
	return func(p *Pipeline) { p.delay = d }
}

func WithErrorLog(l *ErrorLog) Option {
	return func(p *Pipeline) { p.errlog = l }
}

func New(job Job, scanner Scanner, extractor Extractor, enricher Enricher, uploader AssetUploader,
	dedup DedupChecker, writer CatalogWriter, checkpoints *checkpoint.Store, opts ...Option) *Pipeline {
	p := &Pipeline{
		job:         job,
		scanner:     scanner,
		extractor:   extractor,
		enricher:    enricher,
		uploader:    uploader,
		dedup:       dedup,
		writer:      writer,
		checkpoints: checkpoints,
		batchSize:   10,
		log:         zap.S().Named("pipeline"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Stop requests a cooperative halt. The in-flight item finishes, the
// checkpoint is saved, and the run reports partial statistics.
func (p *Pipeline) Stop() {
	p.stopped.Store(true)
}

// Run processes every pending item under the job's root directory. An empty
// scan result is job-fatal; per-item failures are recorded and processing
// continues.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	paths, err := p.scanner.Scan(p.job.RootDir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", p.job.RootDir, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no documents found under %s", p.job.RootDir)
	}

	cp := p.checkpoints.Load()
	metrics.IncreaseRunsTotalMetric(string(p.job.Class))
	p.log.Infof("run started: class=%s root=%s total=%d already_done=%d",
		p.job.Class, p.job.RootDir, len(paths), countDone(cp, paths))

	// Worst-case reprocessing after a hard crash is bounded by the batch
	// size, not the whole run.
	defer func() {
		if err := p.checkpoints.Save(cp); err != nil {
			p.log.Errorf("saving final checkpoint: %v", err)
		}
	}()

	var ticker *jitterbug.Ticker
	if p.delay > 0 {
		ticker = jitterbug.New(p.delay, &jitterbug.Norm{Stdev: p.delay / 10})
		defer ticker.Stop()
	}

	stats := &Stats{Total: len(paths)}
	sinceSave := 0

	for _, path := range paths {
		if cp.IsDone(path) {
			continue
		}
		if p.stopped.Load() || ctx.Err() != nil {
			stats.Stopped = true
			p.log.Infof("stop requested, halting before next item")
			break
		}

		outcome, reason := p.processItem(ctx, path, cp)
		stats.Processed++
		metrics.IncreaseItemsTotalMetric(string(p.job.Class), string(outcome))
		p.publish(path, outcome, reason, cp, stats)

		sinceSave++
		if sinceSave >= p.batchSize {
			if err := p.checkpoints.Save(cp); err != nil {
				p.log.Errorf("saving checkpoint: %v", err)
			}
			sinceSave = 0
		}

		if ticker != nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
			}
		}
	}

	stats.Successful = cp.Successful
	stats.Failed = len(cp.Failed)
	stats.Skipped = len(cp.Skipped)
	for i := len(cp.Failed) - 1; i >= 0 && len(stats.FailurePreview) < failurePreviewLimit; i-- {
		stats.FailurePreview = append(stats.FailurePreview,
			fmt.Sprintf("%s: %s", filepath.Base(cp.Failed[i].Path), cp.Failed[i].Reason))
	}

	p.log.Infof("run finished: total=%d processed=%d successful=%d failed=%d skipped=%d stopped=%t",
		stats.Total, stats.Processed, stats.Successful, stats.Failed, stats.Skipped, stats.Stopped)
	for _, reason := range stats.FailurePreview {
		p.log.Warnf("failure: %s", reason)
	}
	return stats, nil
}

// processItem walks one item through the state machine and returns its
// terminal outcome. Only document upload and catalog insert are item-fatal;
// everything earlier degrades in place.
func (p *Pipeline) processItem(ctx context.Context, path string, cp *checkpoint.Checkpoint) (Outcome, string) {
	fields := p.extractor.Extract(ctx, path)
	for _, note := range fields.Annotations() {
		p.log.Debugf("%s: extraction degraded: %s", filepath.Base(path), note)
	}

	// Dedup before enrichment so duplicates cost no network or storage.
	if p.job.SkipDuplicates {
		exists, err := p.dedup.Exists(ctx, fields)
		if err != nil {
			p.log.Warnf("%s: dedup lookup failed, treating as new: %v", filepath.Base(path), err)
		} else if exists {
			cp.MarkSkipped(path)
			return OutcomeSkipped, ""
		}
	}

	rec := NewRecord(path, fields)

	if p.enricher != nil {
		rec.applyMatch(p.enricher.Search(ctx, rec.Identifier, rec.Title))
	}

	fileURL, err := p.uploader.UploadFile(ctx, p.storageKey(rec.ID, path), path, "application/pdf")
	if err != nil {
		reason := fmt.Sprintf("document upload: %v", err)
		p.errlog.Write(path, "upload", reason)
		cp.MarkFailed(path, reason)
		return OutcomeFailed, reason
	}
	rec.FileURL = fileURL

	p.uploadCover(ctx, rec)

	if err := p.writer.Write(ctx, rec); err != nil {
		reason := fmt.Sprintf("catalog insert: %v", err)
		p.errlog.Write(path, "catalog", reason)
		cp.MarkFailed(path, reason)
		return OutcomeFailed, reason
	}

	cp.MarkCompleted(path)
	return OutcomeCompleted, ""
}

// uploadCover is strictly best-effort: any failure leaves the record with
// the external cover URL (or none) and never fails the item.
func (p *Pipeline) uploadCover(ctx context.Context, rec *Record) {
	if p.enricher == nil || rec.CoverURL == "" {
		return
	}
	data, contentType, err := p.enricher.FetchCover(ctx, rec.CoverURL)
	if err != nil {
		p.log.Warnf("cover download failed for %s: %v", rec.ID, err)
		return
	}
	key := fmt.Sprintf("covers/%s%s", rec.ID, extensionForContentType(contentType))
	coverURL, err := p.uploader.UploadBytes(ctx, key, data, contentType)
	if err != nil {
		p.log.Warnf("cover upload failed for %s: %v", rec.ID, err)
		return
	}
	rec.StoredCoverURL = coverURL
}

func (p *Pipeline) storageKey(id, path string) string {
	prefix := "books"
	if p.job.Class == ClassPastPaper {
		prefix = "past-papers"
	}
	ext := filepath.Ext(path)
	if ext == "" {
		ext = ".pdf"
	}
	return fmt.Sprintf("%s/%s%s", prefix, id, strings.ToLower(ext))
}

func (p *Pipeline) publish(path string, outcome Outcome, reason string, cp *checkpoint.Checkpoint, stats *Stats) {
	event := Event{
		Path:       path,
		Outcome:    outcome,
		Reason:     reason,
		Total:      stats.Total,
		Processed:  stats.Processed,
		Successful: cp.Successful,
		Failed:     len(cp.Failed),
		Skipped:    len(cp.Skipped),
	}
	for _, s := range p.subscribers {
		s.Handle(event)
	}
}

func countDone(cp *checkpoint.Checkpoint, paths []string) int {
	done := 0
	for _, path := range paths {
		if cp.IsDone(path) {
			done++
		}
	}
	return done
}

func extensionForContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/tiff":
		return ".tif"
	default:
		return ".jpg"
	}
}
