package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonboulle/clockwork"

	"DisruptionMonitor/internal/domain"
	"DisruptionMonitor/internal/infrastructure/parser"
	"DisruptionMonitor/internal/observability"
	"DisruptionMonitor/internal/ports"
)

// FetchErrorKind classifies pipeline failures for retry bookkeeping.
type FetchErrorKind string

const (
	// FetchErrorNetwork covers transport failures and non-2xx statuses.
	FetchErrorNetwork FetchErrorKind = "network"
	// FetchErrorUnexpected covers every other fault inside the pipeline.
	FetchErrorUnexpected FetchErrorKind = "unexpected"
)

// FetchError is the only error type the pipeline lets escape; a raw fault
// never reaches the coordinator.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch disruptions (%s): %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AsFetchError unwraps err into a *FetchError when possible.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	ok := errors.As(err, &fe)
	return fe, ok
}

// Pipeline is the unit of work performed on every refresh: one GET serves
// all three lifecycle buckets, so a result always reflects a single
// consistent page snapshot.
type Pipeline struct {
	fetcher  ports.PageFetcher
	executor ports.ParseExecutor
	parser   *parser.DocumentParser
	clock    clockwork.Clock
	metrics  *observability.Metrics
	logger   *slog.Logger
}

var _ ports.DisruptionSource = (*Pipeline)(nil)

// PipelineDeps wires the pipeline's collaborators.
type PipelineDeps struct {
	Fetcher  ports.PageFetcher
	Executor ports.ParseExecutor
	Parser   *parser.DocumentParser
	Clock    clockwork.Clock
	Metrics  *observability.Metrics
	Logger   *slog.Logger
}

// NewPipeline constructs the fetch-parse-aggregate-retain pipeline.
func NewPipeline(deps PipelineDeps) *Pipeline {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	p := deps.Parser
	if p == nil {
		p = parser.NewDocumentParser(deps.Logger)
	}
	return &Pipeline{
		fetcher:  deps.Fetcher,
		executor: deps.Executor,
		parser:   p,
		clock:    clock,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Fetch retrieves and parses the disruptions page for one location, applies
// solved-entry retention, and stamps the result. Returned errors are always
// *FetchError.
func (p *Pipeline) Fetch(ctx context.Context, loc domain.Location, keepSolvedDays int) (result domain.FetchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FetchError{Kind: FetchErrorUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	start := p.clock.Now()

	html, err := p.fetcher.FetchPage(ctx)
	if err != nil {
		return domain.FetchResult{}, &FetchError{Kind: FetchErrorNetwork, Err: err}
	}

	bySection, err := p.parse(ctx, html, loc)
	if err != nil {
		return domain.FetchResult{}, &FetchError{Kind: FetchErrorUnexpected, Err: err}
	}

	result = domain.Assemble(bySection, loc)
	result.Solved.Entries = domain.PruneSolved(result.Solved.Entries, keepSolvedDays, p.clock.Now())
	result.Solved.Active = len(result.Solved.Entries) > 0
	result.FetchedAt = p.clock.Now()

	p.observe(result, p.clock.Now().Sub(start))
	return result, nil
}

// parse hands the CPU-bound document work to the executor and waits.
func (p *Pipeline) parse(ctx context.Context, html string, loc domain.Location) (map[domain.Section][]domain.DisruptionRecord, error) {
	var (
		bySection map[domain.Section][]domain.DisruptionRecord
		parseErr  error
	)

	job := func() {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			parseErr = fmt.Errorf("parse document: %w", err)
			return
		}
		bySection = p.parser.Parse(doc, loc)
	}

	if p.executor != nil {
		if err := p.executor.Do(ctx, job); err != nil {
			return nil, fmt.Errorf("execute parse: %w", err)
		}
	} else {
		job()
	}

	return bySection, parseErr
}

func (p *Pipeline) observe(result domain.FetchResult, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.RefreshDuration.Observe(elapsed.Seconds())
	for _, s := range domain.Sections {
		bucket := result.Bucket(s)
		p.metrics.RecordsParsed.WithLabelValues(string(s)).Add(float64(len(bucket.Entries)))
		p.metrics.ActiveDisruptions.WithLabelValues(result.Location.PostalCode, string(s)).Set(float64(len(bucket.Entries)))
	}
}
