package enrichment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/at-ishikawa/kindanki/internal/inference"
)

// RunResult is the outcome of a pipeline run.
type RunResult struct {
	// Records holds one record per input occurrence, in input order.
	// Repeated occurrences of a lemma share the same cache entry.
	Records []Record
	// Unresolved lists the keys that obtained no enrichment this run.
	Unresolved []UnresolvedItem

	CachedCount   int
	EnrichedCount int
	PlannedCount  int
}

// Orchestrator drives partition, plan, generate, merge and flush across all
// batches of a run. Batches are strictly sequential; the cache file is the
// only shared mutable resource and is flushed after every successful batch,
// so an interrupted run loses at most one batch of work.
type Orchestrator struct {
	store     *Store
	client    inference.Client
	native    string
	target    string
	batchSize int
	writer    io.Writer
}

// NewOrchestrator wires the pipeline. The client never writes to the store;
// merging stays here so cache consistency logic lives in one place.
func NewOrchestrator(
	store *Store,
	client inference.Client,
	nativeLanguage string,
	targetLanguage string,
	batchSize int,
	writer io.Writer,
) *Orchestrator {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Orchestrator{
		store:     store,
		client:    client,
		native:    nativeLanguage,
		target:    targetLanguage,
		batchSize: batchSize,
		writer:    writer,
	}
}

// Run enriches every unique (lemma, language) in keys that is not yet
// cached, merges the results and returns the full record set for all input
// occurrences. Only storage-level failures return an error; generation
// failures degrade to unresolved ledger entries.
func (o *Orchestrator) Run(ctx context.Context, keys []LookupKey) (*RunResult, error) {
	cached, missing := o.store.Partition(keys)

	result := &RunResult{
		CachedCount:  len(cached),
		PlannedCount: len(missing),
	}

	batches := Plan(missing, o.batchSize)
	fmt.Fprintf(o.writer, "%d cached, %d to enrich in %d batches\n", len(cached), len(missing), len(batches))

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			// A run is stopped between batches, never mid-batch.
			return nil, fmt.Errorf("run cancelled before batch %d > %w", i+1, err)
		}

		fmt.Fprintf(o.writer, "  batch %d/%d (%d words)... ", i+1, len(batches), len(batch))
		merged, err := o.processBatch(ctx, batch, result)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(o.writer, "%d merged\n", merged)
	}

	o.collect(keys, result)
	return result, nil
}

func (o *Orchestrator) processBatch(ctx context.Context, batch Batch, result *RunResult) (int, error) {
	words := make([]inference.WordContext, len(batch))
	for i, key := range batch {
		words[i] = inference.WordContext{
			Word:  key.Word,
			Lemma: key.Lemma,
			Usage: key.Usage,
			Book:  key.Book,
		}
	}

	response, err := o.client.GenerateCards(ctx, inference.GenerateCardsRequest{
		Words:          words,
		WordLanguage:   batch[0].Language,
		NativeLanguage: o.native,
		TargetLanguage: o.target,
	})
	if err != nil {
		// Failed batches never promote to a fatal run failure; their keys
		// are absent from the cache and retried on the next invocation.
		reason := "generation failed: " + err.Error()
		var alignmentErr *inference.AlignmentError
		if errors.As(err, &alignmentErr) {
			reason = "misaligned response: " + alignmentErr.Error()
		}
		for _, key := range batch {
			result.Unresolved = append(result.Unresolved, UnresolvedItem{Key: key, Reason: reason})
		}
		slog.Default().Warn("batch failed",
			"size", len(batch),
			"error", err)
		return 0, nil
	}

	merged := 0
	for i, itemResult := range response.Results {
		key := batch[i]
		if itemResult.Failed() {
			result.Unresolved = append(result.Unresolved, UnresolvedItem{Key: key, Reason: itemResult.FailureReason})
			continue
		}

		record := Record{
			Lemma:      key.Lemma,
			Language:   key.Language,
			Word:       key.Word,
			Usage:      key.Usage,
			Book:       key.Book,
			Definition: itemResult.Payload.Definition,
			Gloss:      itemResult.Payload.Gloss,
			Notes:      itemResult.Payload.Notes,
			CreatedAt:  time.Now().UTC(),
			CallID:     response.CallID,
		}
		if err := o.store.Merge(record); err != nil {
			var incompleteErr *IncompleteRecordError
			if errors.As(err, &incompleteErr) {
				result.Unresolved = append(result.Unresolved, UnresolvedItem{Key: key, Reason: "incomplete payload"})
				slog.Default().Warn("skipping incomplete record",
					"lemma", key.Lemma,
					"language", key.Language,
					"field", incompleteErr.Field)
				continue
			}
			return merged, fmt.Errorf("store.Merge(%s) > %w", key.CacheID(), err)
		}
		merged++
		result.EnrichedCount++
	}

	if merged > 0 {
		// One flush per batch keeps completed work durable even if the
		// process dies before the next batch finishes.
		if err := o.store.Flush(); err != nil {
			return merged, fmt.Errorf("store.Flush > %w", err)
		}
	}
	return merged, nil
}

// collect joins every input occurrence with its cache entry, preserving
// input order and duplicating shared records per occurrence.
func (o *Orchestrator) collect(keys []LookupKey, result *RunResult) {
	for _, key := range keys {
		if record, ok := o.store.Lookup(key); ok {
			result.Records = append(result.Records, record)
		}
	}
}
