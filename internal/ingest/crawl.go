package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"bgg-catalog/internal/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const failedIDPreview = 10

// Crawler drives one batch run: collect candidate bgg_ids, fetch and upsert
// each one with a bounded worker pool, and record the outcome.
type Crawler struct {
	db      *gorm.DB
	fetcher Fetcher
	writer  *Writer
	log     *logrus.Logger
	workers int
}

func NewCrawler(conn *gorm.DB, fetcher Fetcher, log *logrus.Logger, workers int) *Crawler {
	if workers < 1 {
		workers = 1
	}
	return &Crawler{
		db:      conn,
		fetcher: fetcher,
		writer:  NewWriter(conn, log),
		log:     log,
		workers: workers,
	}
}

// Summary is the per-run report. Failed games are retried on the next run;
// they never abort the batch.
type Summary struct {
	BatchID     string
	BatchType   string
	Pages       int
	Candidates  int
	Created     int
	Updated     int
	Failed      int
	FailedIDs   []int
	StartedAt   time.Time
	CompletedAt time.Time
}

// Run processes every candidate game once. It returns an error only for
// fatal conditions (the store unreachable before any game is processed);
// per-game failures are reported through the summary.
func (c *Crawler) Run(ctx context.Context, pages int) (*Summary, error) {
	startedAt := time.Now().UTC()
	batchType := "manual"
	if pages > 0 {
		batchType = "ranking"
	}
	summary := &Summary{
		BatchID:   fmt.Sprintf("crawl-%s-%s", batchType, uuid.NewString()[:8]),
		BatchType: batchType,
		Pages:     pages,
		StartedAt: startedAt,
	}

	ids, err := c.collectIDs(ctx, pages)
	if err != nil {
		return nil, err
	}
	summary.Candidates = len(ids)
	c.log.WithFields(logrus.Fields{
		"batch_id":   summary.BatchID,
		"candidates": len(ids),
	}).Info("crawl batch started")

	var mu sync.Mutex
	var wg sync.WaitGroup
	jobs := make(chan int)
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				res, err := c.processGame(ctx, id)
				mu.Lock()
				switch {
				case err != nil:
					summary.Failed++
					summary.FailedIDs = append(summary.FailedIDs, id)
				case res.Created:
					summary.Created++
				default:
					summary.Updated++
				}
				mu.Unlock()
				if err != nil {
					c.log.WithField("bgg_id", id).Warnf("game failed: %v", err)
				}
			}
		}()
	}

feed:
	for _, id := range ids {
		select {
		case jobs <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Ints(summary.FailedIDs)
	summary.CompletedAt = time.Now().UTC()
	if err := c.recordProgress(ctx, summary); err != nil {
		c.log.Warnf("failed to record crawl progress: %v", err)
	}
	c.log.WithFields(logrus.Fields{
		"batch_id": summary.BatchID,
		"created":  summary.Created,
		"updated":  summary.Updated,
		"failed":   summary.Failed,
	}).Info("crawl batch finished")
	return summary, nil
}

func (c *Crawler) processGame(ctx context.Context, bggID int) (Result, error) {
	doc, err := c.fetcher.FetchGame(ctx, bggID)
	if err != nil {
		return Result{}, fmt.Errorf("fetch: %w", err)
	}
	return c.writer.UpsertGame(ctx, doc)
}

// collectIDs merges manually queued target ids, ranking page ids and every
// bgg_id already stored, deduplicated and sorted. Ranking page errors only
// skip that page; a store error here is fatal for the run.
func (c *Crawler) collectIDs(ctx context.Context, pages int) ([]int, error) {
	candidates := make(map[int]struct{})

	var targets []int
	if err := c.db.WithContext(ctx).Model(&db.TargetGame{}).Pluck("bgg_id", &targets).Error; err != nil {
		return nil, fmt.Errorf("list target games: %w", err)
	}
	for _, id := range targets {
		candidates[id] = struct{}{}
	}

	for page := 1; page <= pages; page++ {
		ids, err := c.fetcher.FetchRankingIDs(ctx, page)
		if err != nil {
			c.log.Warnf("ranking page %d failed: %v", page, err)
			continue
		}
		for _, id := range ids {
			candidates[id] = struct{}{}
		}
	}

	var existing []int
	if err := c.db.WithContext(ctx).Model(&db.Game{}).Pluck("bgg_id", &existing).Error; err != nil {
		return nil, fmt.Errorf("list stored games: %w", err)
	}
	for _, id := range existing {
		candidates[id] = struct{}{}
	}

	merged := make([]int, 0, len(candidates))
	for id := range candidates {
		merged = append(merged, id)
	}
	sort.Ints(merged)
	return merged, nil
}

// recordProgress persists the batch outcome. The run context may already be
// cancelled when an interrupted batch gets here, so the write runs on its own
// deadline instead.
func (c *Crawler) recordProgress(ctx context.Context, s *Summary) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	row := db.CrawlProgress{
		BatchID:        s.BatchID,
		BatchType:      s.BatchType,
		TotalGames:     s.Candidates,
		ProcessedGames: s.Created + s.Updated,
		FailedGames:    s.Failed,
		StartedAt:      s.StartedAt,
		CompletedAt:    &s.CompletedAt,
	}
	if len(s.FailedIDs) > 0 {
		payload, err := json.Marshal(s.FailedIDs)
		if err != nil {
			return err
		}
		row.FailedIDs = payload
		preview := s.FailedIDs
		if len(preview) > failedIDPreview {
			preview = preview[:failedIDPreview]
		}
		parts := make([]string, len(preview))
		for i, id := range preview {
			parts[i] = fmt.Sprint(id)
		}
		msg := fmt.Sprintf("failed bgg_ids (first %d): %s", len(preview), strings.Join(parts, ", "))
		row.ErrorMessage = &msg
	}
	return c.db.WithContext(ctx).Create(&row).Error
}
