package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tourkorea/explorer/internal/cache"
	"tourkorea/explorer/internal/client"
	"tourkorea/explorer/internal/domain"
	"tourkorea/explorer/internal/domain/task"
	"tourkorea/explorer/internal/metrics"
	"tourkorea/explorer/internal/queue"
	"tourkorea/explorer/internal/repository"
	"tourkorea/explorer/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const maxPageRetries = 5

type SyncOptions struct {
	Regions      []string
	PageSize     int
	SaveInterval int
	MinIdleTime  time.Duration
}

// SyncService walks the area list of each configured region and snapshots every spot it finds.
// Pages are walked by ParseAll; the detail fetches run on the worker pool started by RunWorkers.
type SyncService struct {
	client       client.TourClient
	repository   repository.DetailRepository
	cache        cache.Cache
	queue        queue.Queue
	stateManager state.StateManager
	opts         SyncOptions
	errorBackoff time.Duration
}

func NewSyncService(
	tourClient client.TourClient,
	repository repository.DetailRepository,
	detailCache cache.Cache,
	queue queue.Queue,
	stateManager state.StateManager,
	opts SyncOptions,
) *SyncService {
	if opts.PageSize <= 0 {
		opts.PageSize = 50
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = 1
	}
	if opts.MinIdleTime <= 0 {
		opts.MinIdleTime = 2 * time.Minute
	}
	return &SyncService{
		client:       tourClient,
		repository:   repository,
		cache:        detailCache,
		queue:        queue,
		stateManager: stateManager,
		opts:         opts,
		errorBackoff: time.Second,
	}
}

func (s *SyncService) ParseAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, areaCode := range s.opts.Regions {
		areaCode := areaCode
		g.Go(func() error {
			return s.walkRegion(ctx, areaCode)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	log.Infof("✅ Completed all regions")
	return nil
}

func (s *SyncService) walkRegion(ctx context.Context, areaCode string) error {
	lastProcessedPage, err := s.stateManager.GetLastProcessedPage(ctx, areaCode)
	if err != nil {
		log.Errorf("Failed to get last processed page: %v", err)
		return err
	}
	if lastProcessedPage != 0 {
		log.Infof("🔄 Continue from page %d for area %s", lastProcessedPage+1, areaCode)
	}

	log.Infof("🔄 Processing area: %s", areaCode)

	totalPages := 0
	queued := 0
	for pageNo := lastProcessedPage + 1; totalPages == 0 || pageNo <= totalPages; pageNo++ {
		page, err := s.client.AreaBasedList(ctx, client.AreaBasedListParams{
			Pagination: client.Pagination{NumOfRows: s.opts.PageSize, PageNo: pageNo},
			AreaCode:   areaCode,
			Arrange:    "C",
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if totalPages == 0 {
				// Without a first answer the page count is unknown.
				return fmt.Errorf("failed to fetch page %d for area %s: %w", pageNo, areaCode, err)
			}
			s.enqueuePageRetry(ctx, &task.PageRetryTask{
				AreaCode:   areaCode,
				PageNumber: pageNo,
				PageSize:   s.opts.PageSize,
				Error:      err.Error(),
			})
			continue
		}

		totalPages = pageCount(page.TotalCount, s.opts.PageSize)

		n, err := s.enqueueDetails(ctx, areaCode, pageNo, page.Items)
		if err != nil {
			log.Errorf("❌ Failed to add task for area %s: %v", areaCode, err)
			return err
		}
		queued += n

		if pageNo%s.opts.SaveInterval == 0 {
			if err := s.stateManager.SetLastProcessedPage(ctx, areaCode, pageNo); err != nil {
				log.Warnf("⚠️ Failed to save progress for area %s: %v", areaCode, err)
			}
		}

		if len(page.Items) == 0 || !page.HasMore() {
			break
		}
	}

	log.Infof("✅ Completed area %s: %d pages, %d spots queued", areaCode, totalPages, queued)

	// The next run walks the region again from the first page.
	if err := s.stateManager.Reset(ctx, areaCode); err != nil {
		log.Warnf("⚠️ Failed to reset progress for area %s: %v", areaCode, err)
	}
	return nil
}

func (s *SyncService) enqueueDetails(ctx context.Context, areaCode string, pageNo int, items []domain.ListingItem) (int, error) {
	for _, item := range items {
		_, err := s.queue.AddTask(ctx, &task.DetailSyncTask{
			ContentID:     item.ContentID,
			ContentTypeID: item.ContentTypeID,
			AreaCode:      areaCode,
			PageNumber:    pageNo,
		})
		if err != nil {
			return 0, err
		}
	}
	return len(items), nil
}

func (s *SyncService) enqueuePageRetry(ctx context.Context, retryTask *task.PageRetryTask) {
	if _, err := s.queue.AddTask(ctx, retryTask); err != nil {
		log.Errorf("❌ Failed to add retry task for page %d of area %s: %v", retryTask.PageNumber, retryTask.AreaCode, err)
		return
	}
	log.Warnf("🔄 Added page %d of area %s to retry queue due to error: %s", retryTask.PageNumber, retryTask.AreaCode, retryTask.Error)
}

func (s *SyncService) RunWorkers(ctx context.Context, numWorkers int) error {
	var wg sync.WaitGroup

	s.runWorkersForStream(ctx, &wg, max(1, numWorkers), queue.StreamName(task.TypeDetailSync), "detail")
	s.runWorkersForStream(ctx, &wg, max(1, numWorkers/2), queue.StreamName(task.TypePageRetry), "retry")

	wg.Wait()
	return nil
}

func (s *SyncService) runWorkersForStream(ctx context.Context, wg *sync.WaitGroup, numWorkers int, streamName, workerType string) {
	// Auto-claimer for messages a crashed consumer left pending
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(s.opts.MinIdleTime)
		defer ticker.Stop()
		consumer := fmt.Sprintf("autoclaimer-%s", workerType)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				claimedMessages, err := s.queue.AutoClaim(ctx, consumer, streamName, s.opts.MinIdleTime)
				if err != nil {
					log.Errorf("❌ Failed to auto-claim messages for %s: %v", streamName, err)
					continue
				}
				if len(claimedMessages) > 0 {
					log.Infof("🔄 Auto-claimed %d messages from %s stream", len(claimedMessages), workerType)
				}
				for _, msg := range claimedMessages {
					if err := s.processMessage(ctx, &msg); err != nil {
						log.Errorf("❌ Failed to process auto-claimed message %s: %v", msg.ID, err)
					}
				}
			}
		}
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			consumer := fmt.Sprintf("%s-worker-%d", workerType, workerID)
			log.Infof("🚀 Starting %s worker %d as consumer %s", workerType, workerID, consumer)
			for {
				if ctx.Err() != nil {
					log.Infof("🛑 %s worker %d stopping", workerType, workerID)
					return
				}

				msg, err := s.queue.GetTask(ctx, consumer, streamName)
				if err != nil {
					if ctx.Err() == nil {
						log.Errorf("❌ Failed to get task from %s: %v", streamName, err)
						sleepOrDone(ctx, s.errorBackoff)
					}
					continue
				}

				if msg != nil {
					if err := s.processMessage(ctx, msg); err != nil {
						log.Errorf("❌ Failed to process message %s: %v", msg.ID, err)
					}
				}
			}
		}(i + 1)
	}
}

// processMessage handles one task and acks it. A transient failure leaves the message
// pending so the auto-claimer hands it to another consumer later.
func (s *SyncService) processMessage(ctx context.Context, msg *redis.XMessage) error {
	taskType, taskData, err := queue.DecodeMessage(msg)
	if err != nil {
		return err
	}

	switch taskType {
	case task.TypeDetailSync:
		syncTask, err := task.UnmarshalTask[*task.DetailSyncTask](taskData)
		if err != nil {
			return fmt.Errorf("failed to unmarshal detail sync task data: %w", err)
		}

		if err := s.syncDetail(ctx, syncTask); err != nil {
			if !isPermanentFailure(err) {
				metrics.SyncTasksProcessed.WithLabelValues(taskType, "failed").Inc()
				return fmt.Errorf("failed to sync detail %s: %w", syncTask.ContentID, err)
			}
			metrics.SyncTasksProcessed.WithLabelValues(taskType, "dropped").Inc()
			log.Warnf("⚠️ Dropping detail %s: %v", syncTask.ContentID, err)
		} else {
			metrics.SyncTasksProcessed.WithLabelValues(taskType, "success").Inc()
		}

	case task.TypePageRetry:
		retryTask, err := task.UnmarshalTask[*task.PageRetryTask](taskData)
		if err != nil {
			return fmt.Errorf("failed to unmarshal retry task data: %w", err)
		}

		if err := s.retryPage(ctx, retryTask); err != nil {
			metrics.SyncTasksProcessed.WithLabelValues(taskType, "failed").Inc()
			return fmt.Errorf("failed to retry page: %w", err)
		}
		metrics.SyncTasksProcessed.WithLabelValues(taskType, "success").Inc()

	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}

	if err := s.queue.AckTask(ctx, queue.StreamName(taskType), msg.ID); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
	}

	return nil
}

func (s *SyncService) syncDetail(ctx context.Context, syncTask *task.DetailSyncTask) error {
	detail, err := s.client.DetailCommon(ctx, syncTask.ContentID)
	if err != nil {
		return err
	}
	if detail.AreaCode == "" {
		detail.AreaCode = syncTask.AreaCode
	}

	if err := s.repository.SaveDetail(ctx, detail); err != nil {
		return err
	}

	// Readers pick up the fresh snapshot on their next request.
	if s.cache != nil {
		if err := s.cache.Delete(ctx, detailCacheKey(detail.ContentID)); err != nil {
			log.Warnf("⚠️ Failed to invalidate cached detail %s: %v", detail.ContentID, err)
		}
	}

	log.Debugf("Synced detail %s (%s)", detail.ContentID, detail.Title)
	return nil
}

// retryPage refetches a failed listing page. Until maxPageRetries is reached a new failure
// re-enqueues the page with a bumped counter.
func (s *SyncService) retryPage(ctx context.Context, retryTask *task.PageRetryTask) error {
	retryTask.RetryCount++

	log.Infof("🔄 Retrying page %d for area %s (attempt %d)", retryTask.PageNumber, retryTask.AreaCode, retryTask.RetryCount)

	page, err := s.client.AreaBasedList(ctx, client.AreaBasedListParams{
		Pagination: client.Pagination{NumOfRows: retryTask.PageSize, PageNo: retryTask.PageNumber},
		AreaCode:   retryTask.AreaCode,
		Arrange:    "C",
	})
	if err != nil {
		if retryTask.RetryCount >= maxPageRetries {
			log.Errorf("❌ Giving up on page %d for area %s after %d attempts: %v",
				retryTask.PageNumber, retryTask.AreaCode, retryTask.RetryCount, err)
			return nil
		}

		newRetryTask := *retryTask
		newRetryTask.Error = err.Error()
		if _, addErr := s.queue.AddTask(ctx, &newRetryTask); addErr != nil {
			log.Errorf("❌ Failed to re-add retry task for page %d: %v", retryTask.PageNumber, addErr)
			return addErr
		}

		log.Warnf("🔄 Page %d for area %s failed again, will retry (attempt %d): %v",
			retryTask.PageNumber, retryTask.AreaCode, retryTask.RetryCount, err)
		return nil
	}

	if _, err := s.enqueueDetails(ctx, retryTask.AreaCode, retryTask.PageNumber, page.Items); err != nil {
		log.Errorf("❌ Failed to add recovered page tasks for page %d: %v", retryTask.PageNumber, err)
		return err
	}

	log.Infof("✅ Successfully recovered page %d for area %s after %d attempts",
		retryTask.PageNumber, retryTask.AreaCode, retryTask.RetryCount)
	return nil
}

// isPermanentFailure reports failures that a later attempt cannot fix.
func isPermanentFailure(err error) bool {
	var validationErr *client.ValidationError
	var httpErr *client.HTTPError
	var upstreamErr *client.UpstreamError
	switch {
	case errors.Is(err, client.ErrNotFound), errors.Is(err, client.ErrMalformedEnvelope):
		return true
	case errors.As(err, &validationErr), errors.As(err, &upstreamErr):
		return true
	case errors.As(err, &httpErr):
		return !httpErr.Retryable()
	default:
		return false
	}
}

func pageCount(totalCount, pageSize int) int {
	if totalCount <= 0 || pageSize <= 0 {
		return 1
	}
	return (totalCount + pageSize - 1) / pageSize
}

func sleepOrDone(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
