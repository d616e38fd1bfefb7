package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"tourkorea/explorer/internal/client"
	"tourkorea/explorer/internal/domain"
	"tourkorea/explorer/internal/domain/task"
	"tourkorea/explorer/internal/repository"

	"github.com/redis/go-redis/v9"
)

var errNotStubbed = errors.New("not stubbed")

type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	areaCodes     func(params client.AreaCodeParams) (*domain.Page[domain.AreaCode], error)
	areaBasedList func(params client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error)
	searchKeyword func(params client.SearchKeywordParams) (*domain.Page[domain.ListingItem], error)
	detailCommon  func(contentID string) (*domain.DetailRecord, error)
	detailIntro   func(contentID string, ct domain.ContentType) (*domain.IntroRecord, error)
	detailImages  func(contentID string) ([]domain.ImageRecord, error)
	detailPet     func(contentID string) (*domain.PetInfoRecord, error)
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) AreaCodes(ctx context.Context, params client.AreaCodeParams) (*domain.Page[domain.AreaCode], error) {
	f.record("areaCodes")
	if f.areaCodes == nil {
		return nil, errNotStubbed
	}
	return f.areaCodes(params)
}

func (f *fakeClient) AreaBasedList(ctx context.Context, params client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
	f.record("areaBasedList")
	if f.areaBasedList == nil {
		return nil, errNotStubbed
	}
	return f.areaBasedList(params)
}

func (f *fakeClient) SearchKeyword(ctx context.Context, params client.SearchKeywordParams) (*domain.Page[domain.ListingItem], error) {
	f.record("searchKeyword")
	if f.searchKeyword == nil {
		return nil, errNotStubbed
	}
	return f.searchKeyword(params)
}

func (f *fakeClient) DetailCommon(ctx context.Context, contentID string) (*domain.DetailRecord, error) {
	f.record("detailCommon")
	if f.detailCommon == nil {
		return nil, errNotStubbed
	}
	return f.detailCommon(contentID)
}

func (f *fakeClient) DetailIntro(ctx context.Context, contentID string, ct domain.ContentType) (*domain.IntroRecord, error) {
	f.record("detailIntro")
	if f.detailIntro == nil {
		return nil, errNotStubbed
	}
	return f.detailIntro(contentID, ct)
}

func (f *fakeClient) DetailImages(ctx context.Context, contentID string) ([]domain.ImageRecord, error) {
	f.record("detailImages")
	if f.detailImages == nil {
		return nil, errNotStubbed
	}
	return f.detailImages(contentID)
}

func (f *fakeClient) DetailPet(ctx context.Context, contentID string) (*domain.PetInfoRecord, error) {
	f.record("detailPet")
	if f.detailPet == nil {
		return nil, errNotStubbed
	}
	return f.detailPet(contentID)
}

type fakeDetailRepo struct {
	mu        sync.Mutex
	saved     map[string]*domain.DetailRecord
	saveErr   error
	snapshots map[string]*domain.DetailRecord
}

func (r *fakeDetailRepo) SaveDetail(ctx context.Context, detail *domain.DetailRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if r.saved == nil {
		r.saved = map[string]*domain.DetailRecord{}
	}
	r.saved[detail.ContentID] = detail
	return nil
}

func (r *fakeDetailRepo) GetDetail(ctx context.Context, contentID string) (*domain.DetailRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshots[contentID], nil
}

type fakeBookmarkRepo struct {
	items []repository.Bookmark
}

func (r *fakeBookmarkRepo) Add(ctx context.Context, b *repository.Bookmark) (*repository.Bookmark, error) {
	saved := *b
	saved.CreatedAt = time.Now()
	r.items = append(r.items, saved)
	return &saved, nil
}

func (r *fakeBookmarkRepo) Remove(ctx context.Context, userID, contentID string) error {
	for i, b := range r.items {
		if b.UserID == userID && b.ContentID == contentID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrBookmarkNotFound
}

func (r *fakeBookmarkRepo) List(ctx context.Context, userID string) ([]repository.Bookmark, error) {
	var out []repository.Bookmark
	for _, b := range r.items {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []task.Task
	acked []string
}

func (q *fakeQueue) AddTask(ctx context.Context, t task.Task) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, t)
	return "1-0", nil
}

func (q *fakeQueue) GetTask(ctx context.Context, consumer, stream string) (*redis.XMessage, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (q *fakeQueue) AckTask(ctx context.Context, stream, msgID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.acked = append(q.acked, msgID)
	return nil
}

func (q *fakeQueue) AutoClaim(ctx context.Context, consumer, stream string, minIdleTime time.Duration) ([]redis.XMessage, error) {
	return nil, nil
}

func (q *fakeQueue) EnsureStreamsExist(ctx context.Context) error {
	return nil
}

func (q *fakeQueue) ofType(taskType string) []task.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []task.Task
	for _, t := range q.tasks {
		if t.TaskType() == taskType {
			out = append(out, t)
		}
	}
	return out
}

type fakeState struct {
	mu    sync.Mutex
	pages map[string]int
	saves []int
	reset []string
}

func (s *fakeState) GetLastProcessedPage(ctx context.Context, areaCode string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pages[areaCode], nil
}

func (s *fakeState) SetLastProcessedPage(ctx context.Context, areaCode string, pageNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pages == nil {
		s.pages = map[string]int{}
	}
	s.pages[areaCode] = pageNumber
	s.saves = append(s.saves, pageNumber)
	return nil
}

func (s *fakeState) Reset(ctx context.Context, areaCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pages, areaCode)
	s.reset = append(s.reset, areaCode)
	return nil
}

func listing(ids ...string) []domain.ListingItem {
	items := make([]domain.ListingItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, domain.ListingItem{
			ContentID:     id,
			ContentTypeID: domain.ContentTypeAttraction,
			Title:         "spot " + id,
			MapX:          "1269769930",
			MapY:          "375788222",
		})
	}
	return items
}
