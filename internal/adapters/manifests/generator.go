package manifests

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"platebind/internal/blob"
	"platebind/internal/core"
	"platebind/pkg/domain"
)

const (
	auditActionRun   = "manifest_run"
	auditActionGroup = "manifest_group"
)

// Config assembles a Generator. Writer is required; everything else is
// optional and degrades to a no-op when absent.
type Config struct {
	Writer  *Writer
	Archive blob.Store       // manifest copies land under manifests/<group>.csv
	Audit   AuditLogger      // run and per-group events
	Metrics core.MetricsRecorder
	Tracer  core.Tracer
	Runs    domain.RunStore  // run records, nil disables persistence
	Workers int              // parallel group synthesis, <=0 means 4

	GroupBy []string // image grouping keys, required
	JoinBy  []string // candidate join keys, defaults to GroupBy

	Synthesis core.SynthesisOptions
	FileLists bool // also write <group>_files.json staging lists
}

// Generator runs the full pipeline over in-memory record streams: aggregate,
// join, synthesize, write. Groups are independent; one group failing to
// synthesize or write never blocks the others.
type Generator struct {
	cfg Config
}

// NewGenerator validates configuration and returns a Generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Writer == nil {
		return nil, fmt.Errorf("manifest writer required")
	}
	if len(cfg.GroupBy) == 0 {
		return nil, fmt.Errorf("at least one grouping key required")
	}
	if len(cfg.JoinBy) == 0 {
		cfg.JoinBy = append([]string(nil), cfg.GroupBy...)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &Generator{cfg: cfg}, nil
}

// Run executes the pipeline and returns the run record. A top-level error
// means the run could not produce any manifests (empty input, aggregation
// failure); per-group failures are reported inside the record instead.
func (g *Generator) Run(ctx context.Context, images []domain.ImageRecord, corrections []domain.CorrectionArtifact) (domain.RunRecord, error) {
	record := domain.RunRecord{
		ID:        newID(),
		GroupBy:   append([]string(nil), g.cfg.GroupBy...),
		JoinBy:    append([]string(nil), g.cfg.JoinBy...),
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	g.saveRun(ctx, record)
	g.auditRun(ctx, record.ID, string(record.Status), nil)

	outcomes, err := g.process(ctx, images, corrections)
	now := time.Now().UTC()
	record.CompletedAt = &now
	record.Groups = outcomes
	if err != nil {
		record.Status = domain.RunStatusFailed
		record.Error = err.Error()
		g.saveRun(ctx, record)
		g.auditRun(ctx, record.ID, string(record.Status), map[string]any{"error": err.Error()})
		return record, err
	}
	record.Status = domain.RunStatusSucceeded
	g.saveRun(ctx, record)
	g.auditRun(ctx, record.ID, string(record.Status), map[string]any{"groups": len(outcomes)})
	return record, nil
}

func (g *Generator) process(ctx context.Context, images []domain.ImageRecord, corrections []domain.CorrectionArtifact) ([]domain.GroupOutcome, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("empty image record stream")
	}

	imageGroups, err := observeStage(ctx, g.cfg.Metrics, g.cfg.Tracer, core.OpAggregateImages, func() ([]domain.ImageGroup, error) {
		return core.AggregateImages(images, g.cfg.GroupBy)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate images: %w", err)
	}
	correctionGroups, err := observeStage(ctx, g.cfg.Metrics, g.cfg.Tracer, core.OpAggregateCorrections, func() ([]domain.CorrectionGroup, error) {
		return core.AggregateCorrections(corrections, g.cfg.GroupBy)
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate corrections: %w", err)
	}

	joined, err := observeStage(ctx, g.cfg.Metrics, g.cfg.Tracer, core.OpJoin, func() (core.JoinResult, error) {
		return core.Join(imageGroups, correctionGroups, g.cfg.JoinBy), nil
	})
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.GroupOutcome, 0, len(joined.Pairs)+len(joined.Unmatched))
	for _, um := range joined.Unmatched {
		g.noteUnmatched(ctx, um)
		outcomes = append(outcomes, domain.GroupOutcome{
			GroupID: um.GroupID,
			JoinKey: um.JoinKey,
			Status:  domain.GroupStatusUnmatched,
			Error:   um.Error(),
		})
	}
	for _, amb := range joined.Ambiguous {
		g.noteAmbiguous(ctx, amb)
	}

	results := make([]domain.GroupOutcome, len(joined.Pairs))
	tasks := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < g.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				results[idx] = g.processGroup(ctx, joined.Pairs[idx])
			}
		}()
	}
	for idx := range joined.Pairs {
		tasks <- idx
	}
	close(tasks)
	wg.Wait()

	outcomes = append(outcomes, results...)
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].GroupID < outcomes[j].GroupID })
	return outcomes, nil
}

// processGroup synthesizes and writes one joined group. Failures are folded
// into the outcome, never propagated.
func (g *Generator) processGroup(ctx context.Context, pair domain.JoinedGroup) domain.GroupOutcome {
	groupID := pair.Images.Key.ID()
	outcome := domain.GroupOutcome{GroupID: groupID}

	result, err := observeStage(ctx, g.cfg.Metrics, g.cfg.Tracer, core.OpSynthesize, func() (core.SynthesisResult, error) {
		return core.Synthesize(pair, g.cfg.Synthesis)
	})
	if err != nil {
		outcome.Status = domain.GroupStatusFailed
		outcome.Error = err.Error()
		g.auditGroup(ctx, groupID, string(outcome.Status), map[string]any{"error": err.Error()})
		return outcome
	}
	outcome.Images = result.Images
	outcome.Corrections = result.Corrections

	path, err := observeStage(ctx, g.cfg.Metrics, g.cfg.Tracer, core.OpWriteManifest, func() (string, error) {
		return g.cfg.Writer.WriteManifest(result.Manifest)
	})
	if err != nil {
		outcome.Status = domain.GroupStatusFailed
		outcome.Error = err.Error()
		g.auditGroup(ctx, groupID, string(outcome.Status), map[string]any{"error": err.Error()})
		return outcome
	}
	outcome.ManifestKey = path

	if g.cfg.FileLists {
		list := domain.FileList{GroupID: groupID, Images: result.Images, Corrections: result.Corrections, Subdirs: result.Subdirs}
		if _, err := g.cfg.Writer.WriteFileList(list); err != nil {
			outcome.Status = domain.GroupStatusFailed
			outcome.Error = err.Error()
			g.auditGroup(ctx, groupID, string(outcome.Status), map[string]any{"error": err.Error()})
			return outcome
		}
	}

	if g.cfg.Archive != nil {
		if err := g.archive(ctx, groupID, result.Manifest); err != nil {
			outcome.Status = domain.GroupStatusFailed
			outcome.Error = err.Error()
			g.auditGroup(ctx, groupID, string(outcome.Status), map[string]any{"error": err.Error()})
			return outcome
		}
	}

	outcome.Status = domain.GroupStatusSucceeded
	g.auditGroup(ctx, groupID, string(outcome.Status), map[string]any{
		"manifest": path,
		"rows":     len(result.Manifest.Rows),
	})
	return outcome
}

// archive mirrors the manifest into the blob store. The store is create-only,
// so a prior copy is deleted first to keep reruns idempotent.
func (g *Generator) archive(ctx context.Context, groupID string, manifest domain.Manifest) error {
	key := "manifests/" + sanitizeName(groupID) + ".csv"
	if _, err := g.cfg.Archive.Delete(ctx, key); err != nil {
		return fmt.Errorf("archive delete %s: %w", key, err)
	}
	_, err := g.cfg.Archive.Put(ctx, key, strings.NewReader(manifest.CSV()), blob.PutOptions{
		ContentType: "text/csv",
		Metadata:    map[string]string{"group": groupID},
	})
	if err != nil {
		return fmt.Errorf("archive put %s: %w", key, err)
	}
	return nil
}

// observeStage wraps a stage with metrics and tracing.
func observeStage[T any](ctx context.Context, metrics core.MetricsRecorder, tracer core.Tracer, op string, fn func() (T, error)) (T, error) {
	var span core.TraceSpan
	if tracer != nil {
		ctx, span = tracer.Start(ctx, op)
	}
	started := time.Now()
	out, err := fn()
	if metrics != nil {
		metrics.Observe(ctx, op, err == nil, time.Since(started))
	}
	if span != nil {
		span.End(err)
	}
	return out, err
}

func (g *Generator) noteUnmatched(ctx context.Context, um domain.UnmatchedGroupError) {
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Observe(ctx, core.OpUnmatchedGroup, false, 0)
	}
	g.auditGroup(ctx, um.GroupID, string(domain.GroupStatusUnmatched), map[string]any{"join_key": um.JoinKey})
	fmt.Fprintf(os.Stderr, "warning: %s\n", um.Error())
}

func (g *Generator) noteAmbiguous(ctx context.Context, amb domain.AmbiguousJoinError) {
	if g.cfg.Metrics != nil {
		g.cfg.Metrics.Observe(ctx, core.OpAmbiguousJoin, false, 0)
	}
	g.auditGroup(ctx, amb.GroupID, "ambiguous", map[string]any{"matches": amb.Matches})
	fmt.Fprintf(os.Stderr, "warning: %s\n", amb.Error())
}

func (g *Generator) saveRun(ctx context.Context, record domain.RunRecord) {
	if g.cfg.Runs == nil {
		return
	}
	if err := g.cfg.Runs.SaveRun(ctx, record); err != nil {
		fmt.Fprintf(os.Stderr, "warning: save run %s: %v\n", record.ID, err)
	}
}

func (g *Generator) auditRun(ctx context.Context, runID, status string, metadata map[string]any) {
	if g.cfg.Audit == nil {
		return
	}
	g.cfg.Audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     auditActionRun,
		RunID:      runID,
		Status:     status,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	})
}

func (g *Generator) auditGroup(ctx context.Context, groupID, status string, metadata map[string]any) {
	if g.cfg.Audit == nil {
		return
	}
	g.cfg.Audit.Record(ctx, AuditEntry{
		ID:         newID(),
		Action:     auditActionGroup,
		GroupID:    groupID,
		Status:     status,
		Metadata:   metadata,
		OccurredAt: time.Now().UTC(),
	})
}
