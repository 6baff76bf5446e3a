// Package scan sequences the pipeline for one batch of posts: feed listing,
// per-image OCR, registration matching, flight enrichment, reply publishing,
// and dedup bookkeeping. Everything is strictly sequential; a failing unit
// of work degrades to "no data" and the batch moves on.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skytagbot/skytag/internal/domain"
	"github.com/skytagbot/skytag/internal/domain/registration"
	"github.com/skytagbot/skytag/internal/logger"
	"github.com/skytagbot/skytag/internal/metrics"
	"github.com/skytagbot/skytag/internal/usecase/report"
)

// Config holds the batch parameters.
type Config struct {
	Subreddit string
	Limit     int
	MaxAge    time.Duration
}

// Service runs scan batches.
type Service struct {
	cfg       Config
	source    FeedSource
	extractor TextExtractor
	lookup    FlightLookup
	publisher Publisher
	dedup     DedupStore
	log       *zap.Logger

	now func() time.Time
}

// New creates a scan service.
func New(
	cfg Config,
	source FeedSource,
	extractor TextExtractor,
	lookup FlightLookup,
	publisher Publisher,
	dedup DedupStore,
	log *zap.Logger,
) *Service {
	return &Service{
		cfg:       cfg,
		source:    source,
		extractor: extractor,
		lookup:    lookup,
		publisher: publisher,
		dedup:     dedup,
		log:       log,
		now:       time.Now,
	}
}

// ProcessBatch pulls one batch of newest posts and processes them in feed
// order, one at a time. Only a failed feed listing aborts the batch; every
// per-post problem is logged and skipped.
func (s *Service) ProcessBatch(ctx context.Context) error {
	log := logger.WithBatch(s.log)
	start := s.now()
	defer func() {
		metrics.BatchDuration.Observe(s.now().Sub(start).Seconds())
	}()

	posts, err := s.source.ListNew(ctx, s.cfg.Subreddit, s.cfg.Limit)
	if err != nil {
		return fmt.Errorf("list feed %s: %w", s.cfg.Subreddit, err)
	}
	log.Info("batch started",
		zap.String("subreddit", s.cfg.Subreddit),
		zap.Int("posts", len(posts)),
	)

	for _, post := range posts {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.processPost(logger.ContextWithLogger(ctx, log), post)
	}

	log.Info("batch finished", zap.Duration("elapsed", s.now().Sub(start)))
	return nil
}

// processPost runs the full pipeline for one post. The post is recorded as
// processed once it yielded images, whether or not a registration was found
// and whether or not the reply went through. Non-image and too-old posts are
// left unrecorded so they can age out naturally.
func (s *Service) processPost(ctx context.Context, post domain.Post) {
	log := logger.FromContext(ctx).With(zap.String("post_id", post.ID))

	seen, err := s.dedup.Contains(ctx, post.ID)
	if err != nil {
		log.Error("dedup check failed", zap.Error(err))
		return
	}
	if seen {
		metrics.PostsScannedTotal.WithLabelValues("deduped").Inc()
		log.Debug("skipping already processed post", zap.String("title", post.Title))
		return
	}

	if age := s.now().Sub(post.Created); age > s.cfg.MaxAge {
		metrics.PostsScannedTotal.WithLabelValues("too_old").Inc()
		log.Debug("skipping old post", zap.Duration("age", age), zap.String("title", post.Title))
		return
	}

	imageURLs := post.ImageURLs()
	if len(imageURLs) == 0 {
		metrics.PostsScannedTotal.WithLabelValues("no_images").Inc()
		log.Debug("skipping non-image post", zap.String("url", post.URL))
		return
	}

	log.Info("processing post",
		zap.String("title", post.Title),
		zap.Int("images", len(imageURLs)),
	)

	aggregate := report.NewAggregate()
	for i, imageURL := range imageURLs {
		s.processImage(ctx, log.With(zap.Int("image", i+1)), imageURL, aggregate)
	}

	if aggregate.Len() > 0 {
		s.publish(ctx, log, post, aggregate)
	} else {
		log.Info("no registrations found in any image")
	}

	// Recorded regardless of publish outcome, so a rejected reply is never
	// retried against the same post.
	if err := s.dedup.Record(ctx, post.ID); err != nil {
		log.Error("failed to record processed post", zap.Error(err))
		return
	}
	metrics.PostsScannedTotal.WithLabelValues("processed").Inc()
}

// processImage runs OCR and matching for one image and, when a candidate
// exists, enriches it and adds the result to the aggregate.
func (s *Service) processImage(ctx context.Context, log *zap.Logger, imageURL string, aggregate *report.Aggregate) {
	text, err := s.extractor.ExtractText(ctx, imageURL)
	if err != nil {
		// A lost image degrades to empty text; the post keeps going.
		metrics.ImagesProcessedTotal.WithLabelValues("fetch_error").Inc()
		log.Warn("text extraction failed", zap.String("url", imageURL), zap.Error(err))
		return
	}
	metrics.ImagesProcessedTotal.WithLabelValues("ok").Inc()

	candidate, ok := registration.Extract(text)
	if !ok {
		return
	}
	metrics.RegistrationsMatchedTotal.WithLabelValues(string(candidate.Family)).Inc()
	log.Info("found registration",
		zap.String("registration", candidate.Code),
		zap.String("family", string(candidate.Family)),
	)

	result, err := s.lookup.Enrich(ctx, candidate.Code)
	if err != nil {
		// The sighting is still worth reporting without flight detail.
		log.Warn("flight lookup failed", zap.String("registration", candidate.Code), zap.Error(err))
	}
	aggregate.Add(result)
}

func (s *Service) publish(ctx context.Context, log *zap.Logger, post domain.Post, aggregate *report.Aggregate) {
	body := report.Compose(aggregate)

	permalink, err := s.publisher.Reply(ctx, post.Fullname, body)
	if err != nil {
		metrics.PublishesTotal.WithLabelValues("error").Inc()
		if !errors.Is(err, domain.ErrPublishFailure) {
			err = fmt.Errorf("%w: %w", domain.ErrPublishFailure, err)
		}
		log.Error("failed to publish reply", zap.Error(err))
		return
	}
	metrics.PublishesTotal.WithLabelValues("ok").Inc()
	log.Info("published reply",
		zap.String("permalink", permalink),
		zap.Int("registrations", aggregate.Len()),
	)
}
