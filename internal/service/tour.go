package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourkorea/explorer/internal/batch"
	"tourkorea/explorer/internal/cache"
	"tourkorea/explorer/internal/client"
	"tourkorea/explorer/internal/domain"
	"tourkorea/explorer/internal/geo"
	"tourkorea/explorer/internal/pager"
	"tourkorea/explorer/internal/repository"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Tour is a listing item with its coordinates already converted.
type Tour struct {
	domain.ListingItem
	Location geo.Point             `json:"location"`
	Pet      *domain.PetInfoRecord `json:"pet,omitempty"`
}

// ListQuery selects search when Keyword is set and the area list otherwise.
type ListQuery struct {
	Keyword       string
	AreaCode      string
	ContentTypeID domain.ContentType
	NumOfRows     int
	PageNo        int
	PetFriendly   bool
}

func (q ListQuery) cacheKey() string {
	return fmt.Sprintf("list:%s:%s:%s:%d:%d", strings.TrimSpace(q.Keyword), q.AreaCode, q.ContentTypeID, q.NumOfRows, q.PageNo)
}

// DetailBundle is everything the detail screen shows for one spot.
type DetailBundle struct {
	Detail   *domain.DetailRecord  `json:"detail"`
	Location geo.Point             `json:"location"`
	Intro    *domain.IntroRecord   `json:"intro"`
	Images   []domain.ImageRecord  `json:"images"`
	Pet      *domain.PetInfoRecord `json:"pet"`
}

type TourOptions struct {
	CacheTTL     time.Duration
	AreaTTL      time.Duration
	PetBatchSize int
}

type TourService struct {
	client    client.TourClient
	cache     cache.Cache
	details   repository.DetailRepository
	bookmarks repository.BookmarkRepository
	opts      TourOptions
}

func NewTourService(
	tourClient client.TourClient,
	responseCache cache.Cache,
	details repository.DetailRepository,
	bookmarks repository.BookmarkRepository,
	opts TourOptions,
) *TourService {
	if opts.PetBatchSize <= 0 {
		opts.PetBatchSize = batch.DefaultBatchSize
	}
	return &TourService{
		client:    tourClient,
		cache:     responseCache,
		details:   details,
		bookmarks: bookmarks,
		opts:      opts,
	}
}

// List returns one page of tours. With PetFriendly set, only items whose pet record allows
// pets are kept; TotalCount still reports the unfiltered upstream total.
func (s *TourService) List(ctx context.Context, q ListQuery) (*domain.Page[Tour], error) {
	page, err := cache.GetOrLoad(ctx, s.cache, q.cacheKey(), s.opts.CacheTTL, func(ctx context.Context) (*domain.Page[domain.ListingItem], error) {
		return s.fetchListing(ctx, q)
	})
	if err != nil {
		return nil, err
	}

	tours := make([]Tour, 0, len(page.Items))
	for _, item := range page.Items {
		tours = append(tours, Tour{
			ListingItem: item,
			Location:    geo.ToGeographic(item.MapX, item.MapY),
		})
	}

	if q.PetFriendly {
		tours = s.filterPetFriendly(ctx, tours)
	}

	return &domain.Page[Tour]{
		Items:      tours,
		TotalCount: page.TotalCount,
		PageNo:     page.PageNo,
		NumOfRows:  page.NumOfRows,
	}, nil
}

// Browse loads the first page of q and returns an aggregator that appends the following
// pages on each LoadMore. q.PageNo is ignored.
func (s *TourService) Browse(ctx context.Context, q ListQuery) (*pager.Aggregator[Tour], error) {
	q.PageNo = 1
	first, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}

	return pager.New(first.Items, first.TotalCount, func(ctx context.Context, pageNo int) (*domain.Page[Tour], error) {
		next := q
		next.PageNo = pageNo
		return s.List(ctx, next)
	}), nil
}

// Collect browses q and loads up to pages pages in total, stopping early once the listing is exhausted.
// A failed page is recorded in the snapshot's Error and the pages gathered so far are kept.
func (s *TourService) Collect(ctx context.Context, q ListQuery, pages int) (pager.Snapshot[Tour], error) {
	agg, err := s.Browse(ctx, q)
	if err != nil {
		return pager.Snapshot[Tour]{}, err
	}

	signals := make(chan struct{}, max(pages-1, 0))
	for i := 1; i < pages; i++ {
		signals <- struct{}{}
	}
	close(signals)
	agg.Watch(ctx, signals)

	return agg.Snapshot(), nil
}

func (s *TourService) fetchListing(ctx context.Context, q ListQuery) (*domain.Page[domain.ListingItem], error) {
	pagination := client.Pagination{NumOfRows: q.NumOfRows, PageNo: q.PageNo}

	if strings.TrimSpace(q.Keyword) != "" {
		return s.client.SearchKeyword(ctx, client.SearchKeywordParams{
			Pagination:    pagination,
			Keyword:       q.Keyword,
			AreaCode:      q.AreaCode,
			ContentTypeID: q.ContentTypeID,
		})
	}

	return s.client.AreaBasedList(ctx, client.AreaBasedListParams{
		Pagination:    pagination,
		AreaCode:      q.AreaCode,
		ContentTypeID: q.ContentTypeID,
	})
}

func (s *TourService) filterPetFriendly(ctx context.Context, tours []Tour) []Tour {
	ids := make([]string, 0, len(tours))
	for _, t := range tours {
		ids = append(ids, t.ContentID)
	}

	pets := s.PetInfo(ctx, ids)

	filtered := make([]Tour, 0, len(tours))
	for _, t := range tours {
		if pet := pets[t.ContentID]; pet.Allowed() {
			t.Pet = pet
			filtered = append(filtered, t)
		}
	}

	log.Debugf("Pet filter kept %d of %d items", len(filtered), len(tours))
	return filtered
}

// PetInfo fetches pet records for ids in bounded batches. Ids without data or whose fetch
// failed map to nil.
func (s *TourService) PetInfo(ctx context.Context, ids []string) map[string]*domain.PetInfoRecord {
	return batch.Fetch[domain.PetInfoRecord](ctx, ids, s.opts.PetBatchSize, s.client.DetailPet)
}

// Detail assembles the detail bundle. The common detail is required; intro, images and pet
// info degrade to empty when their calls fail.
func (s *TourService) Detail(ctx context.Context, contentID string, contentType domain.ContentType) (*DetailBundle, error) {
	bundle := &DetailBundle{Images: []domain.ImageRecord{}}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		detail, err := s.loadDetail(gctx, contentID)
		if err != nil {
			return err
		}
		bundle.Detail = detail
		bundle.Location = geo.ToGeographic(detail.MapX, detail.MapY)

		ct := contentType
		if ct == "" {
			ct = detail.ContentTypeID
		}
		if !ct.Valid() {
			return nil
		}

		intro, err := s.client.DetailIntro(gctx, contentID, ct)
		if err != nil {
			log.Warnf("⚠️ Intro unavailable for %s: %v", contentID, err)
			return nil
		}
		bundle.Intro = intro
		return nil
	})

	g.Go(func() error {
		images, err := s.client.DetailImages(gctx, contentID)
		if err != nil {
			log.Warnf("⚠️ Images unavailable for %s: %v", contentID, err)
			return nil
		}
		if images != nil {
			bundle.Images = images
		}
		return nil
	})

	g.Go(func() error {
		pet, err := s.client.DetailPet(gctx, contentID)
		if err != nil {
			log.Warnf("⚠️ Pet info unavailable for %s: %v", contentID, err)
			return nil
		}
		bundle.Pet = pet
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bundle, nil
}

func detailCacheKey(contentID string) string {
	return "detail:" + contentID
}

// loadDetail serves the common detail from cache, then upstream, then the stored snapshot
// when the upstream circuit is open.
func (s *TourService) loadDetail(ctx context.Context, contentID string) (*domain.DetailRecord, error) {
	key := detailCacheKey(contentID)

	var cached domain.DetailRecord
	if found, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Warnf("⚠️ Cache read failed for %s: %v", key, err)
	} else if found {
		return &cached, nil
	}

	detail, err := s.client.DetailCommon(ctx, contentID)
	if err != nil {
		if errors.Is(err, client.ErrCircuitOpen) && s.details != nil {
			if snapshot, snapErr := s.details.GetDetail(ctx, contentID); snapErr == nil && snapshot != nil {
				log.Infof("📦 Serving stored snapshot for %s while upstream is unavailable", contentID)
				return snapshot, nil
			}
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, key, detail, s.opts.CacheTTL); err != nil {
		log.Warnf("⚠️ Cache write failed for %s: %v", key, err)
	}
	if s.details != nil {
		if err := s.details.SaveDetail(ctx, detail); err != nil {
			log.Warnf("⚠️ Failed to snapshot detail %s: %v", contentID, err)
		}
	}
	return detail, nil
}

// AreaCodes lists regions, or the districts of one region when areaCode is set.
func (s *TourService) AreaCodes(ctx context.Context, areaCode string) ([]domain.AreaCode, error) {
	return cache.GetOrLoad(ctx, s.cache, "areas:"+areaCode, s.opts.AreaTTL, func(ctx context.Context) ([]domain.AreaCode, error) {
		page, err := s.client.AreaCodes(ctx, client.AreaCodeParams{
			Pagination: client.Pagination{NumOfRows: 100, PageNo: 1},
			AreaCode:   areaCode,
		})
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	})
}

func (s *TourService) AddBookmark(ctx context.Context, b *repository.Bookmark) (*repository.Bookmark, error) {
	return s.bookmarks.Add(ctx, b)
}

func (s *TourService) RemoveBookmark(ctx context.Context, userID, contentID string) error {
	return s.bookmarks.Remove(ctx, userID, contentID)
}

func (s *TourService) ListBookmarks(ctx context.Context, userID string) ([]repository.Bookmark, error) {
	bookmarks, err := s.bookmarks.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bookmarks == nil {
		bookmarks = []repository.Bookmark{}
	}
	return bookmarks, nil
}
