// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orchestrate drives the per-run compliance pipeline:
// normalize, extract requirements, index the policy, then retrieve and
// assess each requirement under a bounded worker pool, and aggregate
// the ordered verdicts into the final report.
package orchestrate

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/compliance-engine/internal/assess"
	"github.com/pdiddy/compliance-engine/internal/document"
	"github.com/pdiddy/compliance-engine/internal/extract"
	"github.com/pdiddy/compliance-engine/internal/report"
	"github.com/pdiddy/compliance-engine/pkg/types"
)

// Indexer abstracts the policy clause index. The production
// implementation is policy.Index; tests supply deterministic stubs.
type Indexer interface {
	Build(ctx context.Context, policyText string) (int, error)
	Retrieve(ctx context.Context, query string, topK int, minScore float64) (types.RetrievalResult, error)
}

// Runner holds the capabilities and configuration for compliance runs.
// A Runner carries no cross-run state; concurrent runs with separate
// Indexers never interfere.
type Runner struct {
	Indexer    Indexer
	Classifier assess.Classifier
	Config     types.PipelineConfig
}

// run-level phases, in order. Aborted only occurs on fatal setup
// failure: an invalid document, no extractable requirements, or an
// unparseable policy.
const (
	phaseInitializing = "initializing"
	phaseIndexing     = "indexing"
	phaseProcessing   = "processing"
	phaseFinalizing   = "finalizing"
	phaseDone         = "done"
	phaseAborted      = "aborted"
)

// backoffBase controls the base duration for per-requirement retry
// backoff. Tests override this to avoid real sleeps.
var backoffBase = time.Second

// Run executes one compliance check of srsRaw against policyRaw and
// returns the external report contract. Progress lines are written to
// w. The returned error is non-nil only for aborted runs; the report
// then carries parsing_success=false and the failure message.
// Per-requirement failures never abort the run: they are retried with
// bounded backoff and degraded to Failed verdicts, and the final
// report always holds exactly one verdict per extracted requirement in
// original document order.
func (r *Runner) Run(ctx context.Context, srsRaw, policyRaw, policyName string, w io.Writer) (*types.ParsedReport, error) {
	fmt.Fprintf(w, "%s\n", phaseInitializing)

	srs, err := document.Normalize("srs", srsRaw, r.Config.Document)
	if err != nil {
		return r.abort(w, err)
	}
	policyText, err := document.Normalize("policy", policyRaw, r.Config.Document)
	if err != nil {
		return r.abort(w, err)
	}

	reqs, err := extract.Requirements(srs)
	if err != nil {
		return r.abort(w, err)
	}
	fmt.Fprintf(w, "extracted %d requirement(s)\n", len(reqs))

	fmt.Fprintf(w, "%s\n", phaseIndexing)
	clauseCount, err := r.Indexer.Build(ctx, policyText)
	if err != nil {
		return r.abort(w, fmt.Errorf("indexing policy: %w", err))
	}
	fmt.Fprintf(w, "indexed %d clause(s)\n", clauseCount)

	fmt.Fprintf(w, "%s\n", phaseProcessing)
	results := r.process(ctx, reqs, w)

	fmt.Fprintf(w, "%s\n", phaseFinalizing)
	rep := report.Aggregate(policyName, results)
	fmt.Fprintf(w, "%s: %d compliant, %d partially compliant, %d non-compliant, %d failed\n",
		phaseDone,
		rep.Summary[types.StatusCompliant],
		rep.Summary[types.StatusPartiallyCompliant],
		rep.Summary[types.StatusNonCompliant],
		rep.Summary[types.StatusFailed])

	return report.ToParsed(rep), nil
}

func (r *Runner) abort(w io.Writer, err error) (*types.ParsedReport, error) {
	fmt.Fprintf(w, "%s: %v\n", phaseAborted, err)
	return report.Failure("", err), err
}

// process runs retrieval and assessment for every requirement under a
// bounded worker pool. Each worker writes into its own slot of the
// results slice, so the output order is the document order no matter
// when tasks complete. Cancellation stops dispatch; requirements never
// dispatched, and in-flight tasks observing the cancellation, are
// recorded as Failed so the one-verdict-per-requirement invariant
// still holds.
func (r *Runner) process(ctx context.Context, reqs []types.Requirement, w io.Writer) []types.RequirementResult {
	workers := r.Config.Orchestrator.Workers
	if workers <= 0 {
		workers = 4
	}

	results := make([]types.RequirementResult, len(reqs))

	// Workers share the caller's progress writer; serialize writes.
	var wmu sync.Mutex

	p := pool.New().WithMaxGoroutines(workers)
	for i, req := range reqs {
		if ctx.Err() != nil {
			results[i] = types.RequirementResult{
				Requirement: req,
				Verdict:     assess.FailedVerdict(req, fmt.Errorf("run cancelled")),
			}
			continue
		}
		p.Go(func() {
			verdict := r.processOne(ctx, req)
			results[i] = types.RequirementResult{Requirement: req, Verdict: verdict}

			wmu.Lock()
			fmt.Fprintf(w, "assessed %s (%s)\n", req.ID, verdict.Status)
			wmu.Unlock()
		})
	}
	p.Wait()

	return results
}

// processOne drives one requirement through Retrieving and Assessing.
// Failures in either step are retried and then degraded to a Failed
// verdict; they never propagate.
func (r *Runner) processOne(ctx context.Context, req types.Requirement) types.ComplianceVerdict {
	maxRetries := r.Config.Orchestrator.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	// Retrieving.
	retrieved, err := withRetry(ctx, maxRetries, func(ctx context.Context) (types.RetrievalResult, error) {
		return r.Indexer.Retrieve(ctx, req.Text, r.Config.Retrieval.TopK, r.Config.Retrieval.MinScore)
	})
	if err != nil {
		return assess.FailedVerdict(req, fmt.Errorf("retrieval failed: %w", err))
	}

	if len(retrieved) == 0 {
		return assess.NoApplicablePolicy(req)
	}

	// Assessing.
	verdict, err := withRetry(ctx, maxRetries, func(ctx context.Context) (types.ComplianceVerdict, error) {
		return r.Classifier.Assess(ctx, req, retrieved)
	})
	if err != nil {
		return assess.FailedVerdict(req, fmt.Errorf("assessment failed: %w", err))
	}

	return verdict
}

// withRetry calls fn with exponential backoff until it succeeds or the
// attempts are exhausted. Context cancellation during a backoff wait
// aborts immediately.
func withRetry[T any](ctx context.Context, maxRetries int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
			}
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}
	}
	return zero, fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
