// Package elastic implements the bulk loader against Elasticsearch.
// Documents are written with doc_as_upsert semantics so a document can
// receive partial updates from different passes without clobbering
// fields it does not carry.
package elastic

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/olivere/elastic/v7"
	"golang.org/x/time/rate"

	"github.com/cinevault/cinesync/internal/core/domain"
	"github.com/cinevault/cinesync/internal/core/ports/driven"
	"github.com/cinevault/cinesync/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driven.BulkIndexer = (*Indexer)(nil)

// Options tunes chunking, retry and throttling for the loader.
type Options struct {
	// ChunkSize is the number of documents per bulk request.
	ChunkSize int

	// InitialInterval, Multiplier and MaxInterval shape the
	// exponential backoff between retries of one chunk.
	InitialInterval time.Duration
	Multiplier      float64
	MaxInterval     time.Duration

	// MaxRetries bounds retries per chunk before the pass fails. Zero
	// means unbounded: only the caller's context stops the retry loop.
	// Configuration validation rejects zero; it is reachable only by
	// constructing Options directly.
	MaxRetries uint64

	// RateLimit caps bulk requests per second. Zero means no cap.
	RateLimit float64
}

// Indexer writes document batches to Elasticsearch in bounded chunks
// with transient-failure retry.
type Indexer struct {
	client  *elastic.Client
	opts    Options
	limiter *rate.Limiter
}

// NewIndexer connects to the Elasticsearch endpoint at url. Sniffing
// and health checks are disabled: the engine talks to the configured
// endpoint only, and a down index surfaces as a pass failure rather
// than a startup failure.
func NewIndexer(url string, opts Options) (*Indexer, error) {
	client, err := elastic.NewClient(
		elastic.SetURL(url),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Indexer{client: client, opts: opts, limiter: limiter}, nil
}

// Upsert writes docs to index in chunks of the configured size. Chunks
// are independent: there is no cross-chunk atomicity, which is why
// callers commit watermarks only after the whole pass succeeds. On
// cancellation the in-flight chunk finishes and no further chunk
// starts.
func (i *Indexer) Upsert(ctx context.Context, index string, docs []domain.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	size := i.opts.ChunkSize
	if size <= 0 {
		size = len(docs)
	}

	for start := 0; start < len(docs); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + size
		if end > len(docs) {
			end = len(docs)
		}

		if err := i.upsertChunk(ctx, index, docs[start:end]); err != nil {
			return fmt.Errorf("upserting documents %d-%d of %d into %s: %w",
				start, end-1, len(docs), index, err)
		}
		logger.Debug("Upserted %d documents into %s", end-start, index)
	}
	return nil
}

// EnsureIndex creates index when it does not exist. Mappings are
// provisioned by the index schema files, not here.
func (i *Indexer) EnsureIndex(ctx context.Context, index string) error {
	exists, err := i.client.IndexExists(index).Do(ctx)
	if err != nil {
		return fmt.Errorf("checking index %s: %w", index, err)
	}
	if exists {
		return nil
	}
	if _, err := i.client.CreateIndex(index).Do(ctx); err != nil {
		return fmt.Errorf("creating index %s: %w", index, err)
	}
	logger.Warn("Index %q was created without a mapping", index)
	return nil
}

// upsertChunk issues one bulk request under retry. Only transient
// transport failures are retried; a structural rejection from the
// index is permanent and propagates as domain.ErrInvalidDocument.
func (i *Indexer) upsertChunk(ctx context.Context, index string, docs []domain.IndexDocument) error {
	attempt := 0
	op := func() error {
		attempt++
		if i.limiter != nil {
			if err := i.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		bulk := i.client.Bulk()
		for _, doc := range docs {
			bulk.Add(elastic.NewBulkUpdateRequest().
				Index(index).
				Id(doc.DocumentID()).
				Doc(doc).
				DocAsUpsert(true))
		}

		// A partially sent chunk must not be abandoned: the in-flight
		// request runs to completion and cancellation takes effect
		// between chunks and retries.
		resp, err := bulk.Do(context.WithoutCancel(ctx))
		if err != nil {
			if transportTransient(err) {
				logger.Warn("Bulk request to %s failed (attempt %d): %v", index, attempt, err)
				return err
			}
			return backoff.Permanent(err)
		}

		return classifyItems(resp)
	}

	err := backoff.Retry(op, i.newBackOff(ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidDocument) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// Retries exhausted on a transport fault.
	return domain.Transient(err)
}

// newBackOff builds the per-chunk retry schedule.
func (i *Indexer) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = i.opts.InitialInterval
	exp.Multiplier = i.opts.Multiplier
	exp.MaxInterval = i.opts.MaxInterval
	exp.MaxElapsedTime = 0 // bounded by MaxRetries, not wall time
	exp.Reset()

	var b backoff.BackOff = exp
	if i.opts.MaxRetries > 0 {
		b = backoff.WithMaxRetries(b, i.opts.MaxRetries)
	}
	return backoff.WithContext(b, ctx)
}

// classifyItems inspects per-item results of a bulk response. Items
// rejected with a retryable status fail the chunk as transient (the
// whole chunk is retried; upserts make that safe). A structural
// rejection is permanent.
func classifyItems(resp *elastic.BulkResponse) error {
	if resp == nil || !resp.Errors {
		return nil
	}
	for _, item := range resp.Failed() {
		if statusTransient(item.Status) {
			return fmt.Errorf("document %s rejected with status %d", item.Id, item.Status)
		}
		reason := "unknown reason"
		if item.Error != nil {
			reason = fmt.Sprintf("%s: %s", item.Error.Type, item.Error.Reason)
		}
		return backoff.Permanent(fmt.Errorf("%w: document %s: %s",
			domain.ErrInvalidDocument, item.Id, reason))
	}
	return nil
}

// transportTransient reports whether err is a connectivity-level
// failure worth retrying.
func transportTransient(err error) bool {
	if elastic.IsConnErr(err) || elastic.IsTimeout(err) {
		return true
	}
	if elastic.IsStatusCode(err, 429) || elastic.IsStatusCode(err, 502) || elastic.IsStatusCode(err, 503) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// statusTransient reports whether an HTTP status on a bulk item means
// backpressure rather than a bad document.
func statusTransient(status int) bool {
	switch status {
	case 429, 502, 503:
		return true
	}
	return false
}
