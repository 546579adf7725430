package mapping

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
)

// Options configures one batch mapping call.
type Options struct {
	// Policy bounds every walk in the batch. Zero value means the default
	// two-hop unconstrained policy.
	Policy TraversalPolicy
	// Aggregation controls one_to_many fan-out of matrix rows.
	Aggregation AggregationPolicy
	// Reduction controls many-row collapse onto one target row.
	Reduction ReductionPolicy
	// Workers bounds resolution concurrency; 0 means runtime.NumCPU().
	Workers int
}

func (o Options) withDefaults() Options {
	if o.Policy.MaxHops < 1 {
		o.Policy.MaxHops = DefaultMaxHops
	}
	if o.Aggregation == "" {
		o.Aggregation = AggregationDuplicate
	}
	if o.Reduction == "" {
		o.Reduction = ReductionSum
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}

// BatchReport is the outcome of one batch call: one classified result per
// input, in input order, plus the aggregated matrix when one was supplied.
type BatchReport struct {
	Target  Target
	Results []*MappingResult
	// Matrix is the target-indexed value table, nil when no input matrix
	// was supplied.
	Matrix *Matrix
}

// Counts tallies results per classification.
func (r *BatchReport) Counts() map[Classification]int {
	counts := make(map[Classification]int)
	for _, res := range r.Results {
		counts[res.Class]++
	}
	return counts
}

// Unmapped returns every result that failed to map, with its reason.
func (r *BatchReport) Unmapped() []*MappingResult {
	var out []*MappingResult
	for _, res := range r.Results {
		if res.Class == ClassUnmapped {
			out = append(out, res)
		}
	}
	return out
}

// Orchestrator drives the resolver over whole input lists. Each input's
// walk is independent, so resolution runs on a bounded worker pool over the
// shared read-only store.
type Orchestrator struct {
	store    Store
	resolver *Resolver
	logger   *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given store.
func NewOrchestrator(s Store) *Orchestrator {
	return &Orchestrator{
		store:    s,
		resolver: NewResolver(s),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger for per-input warnings and batch summaries.
func (o *Orchestrator) SetLogger(l *zap.Logger) {
	o.logger = l
}

// MapIdentifiers resolves every input toward the target namespace. A
// single input's failure never aborts the batch; it is classified and
// recorded. Only structural problems fail the call: a target namespace the
// store does not know at all (ErrUnknownTarget), or store corruption.
func (o *Orchestrator) MapIdentifiers(ctx context.Context, inputs []Input, target Target, opts Options) (*BatchReport, error) {
	return o.mapBatch(ctx, inputs, nil, target, opts)
}

// MapMatrix resolves every input and aggregates the supplied value matrix
// (one row per input, aligned by index) onto the target genes.
func (o *Orchestrator) MapMatrix(ctx context.Context, inputs []Input, m *Matrix, target Target, opts Options) (*BatchReport, error) {
	if m == nil {
		return nil, fmt.Errorf("nil input matrix")
	}
	if len(m.Values) != len(inputs) {
		return nil, fmt.Errorf("matrix has %d rows for %d inputs", len(m.Values), len(inputs))
	}
	return o.mapBatch(ctx, inputs, m, target, opts)
}

func (o *Orchestrator) mapBatch(ctx context.Context, inputs []Input, m *Matrix, target Target, opts Options) (*BatchReport, error) {
	opts = opts.withDefaults()

	ok, err := o.store.HasAuthority(target.Species, target.Authority)
	if err != nil {
		return nil, fmt.Errorf("validate target: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, target)
	}

	o.logger.Info("mapping batch",
		zap.Int("inputs", len(inputs)),
		zap.String("target", target.String()),
		zap.Int("max_hops", opts.Policy.MaxHops),
		zap.Int("workers", opts.Workers))

	results, err := o.resolveAll(ctx, inputs, target, opts)
	if err != nil {
		return nil, err
	}

	markManyToOne(results)

	for _, res := range results {
		if res.Class == ClassUnmapped {
			o.logger.Warn("input did not map",
				zap.String("input", res.Input.String()),
				zap.String("reason", string(res.Reason)))
		}
	}

	report := &BatchReport{Target: target, Results: results}
	if m != nil {
		out, err := aggregateMatrix(results, m, opts.Aggregation, opts.Reduction)
		if err != nil {
			return nil, fmt.Errorf("aggregate matrix: %w", err)
		}
		report.Matrix = out
	}
	return report, nil
}

// workItem and workResult carry sequence numbers so results can be
// reassembled in input order regardless of worker scheduling.
type workItem struct {
	seq   int
	input Input
}

type workResult struct {
	seq    int
	result *MappingResult
	err    error
}

func (o *Orchestrator) resolveAll(ctx context.Context, inputs []Input, target Target, opts Options) ([]*MappingResult, error) {
	items := make(chan workItem, 2*opts.Workers)
	resultCh := make(chan workResult, 2*opts.Workers)

	go func() {
		defer close(items)
		for i, in := range inputs {
			select {
			case items <- workItem{seq: i, input: in}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(opts.Workers)
	for range opts.Workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := o.resolver.Resolve(item.input, target, opts.Policy)
				resultCh <- workResult{seq: item.seq, result: res, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]*MappingResult, len(inputs))
	var firstErr error
	for r := range resultCh {
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
		if r.err == nil {
			results[r.seq] = r.result
		}
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// markManyToOne reclassifies single-candidate results whose distinct source
// genes converge on the same target node. The same input submitted twice is
// one source, not a collapse. Only observable at the batch level, never from
// a single query in isolation.
func markManyToOne(results []*MappingResult) {
	byTarget := make(map[string][]*MappingResult)
	for _, res := range results {
		if res.Class == ClassUnique {
			key := res.Candidates[0].Node.Key()
			byTarget[key] = append(byTarget[key], res)
		}
	}
	for _, group := range byTarget {
		sources := make(map[string]bool, len(group))
		for _, res := range group {
			sources[res.Source.Key()] = true
		}
		if len(sources) < 2 {
			continue
		}
		for _, res := range group {
			res.Class = ClassManyToOne
		}
	}
}
