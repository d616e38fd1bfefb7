package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tourkorea/explorer/internal/cache"
	"tourkorea/explorer/internal/client"
	"tourkorea/explorer/internal/domain"
	"tourkorea/explorer/internal/geo"
	"tourkorea/explorer/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTourService(c *fakeClient, details *fakeDetailRepo) *TourService {
	return NewTourService(c, cache.NewLayeredCache(nil, time.Minute), details, &fakeBookmarkRepo{}, TourOptions{
		CacheTTL: time.Minute,
		AreaTTL:  time.Hour,
	})
}

func TestTourService_ListUsesAreaListWithoutKeyword(t *testing.T) {
	c := &fakeClient{
		areaBasedList: func(p client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
			assert.Equal(t, "1", p.AreaCode)
			assert.Equal(t, 20, p.NumOfRows)
			return &domain.Page[domain.ListingItem]{Items: listing("1", "2"), TotalCount: 45, PageNo: 1, NumOfRows: 20}, nil
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	page, err := s.List(context.Background(), ListQuery{AreaCode: "1", NumOfRows: 20, PageNo: 1})
	require.NoError(t, err)

	assert.Equal(t, 45, page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.InDelta(t, 37.5788222, page.Items[0].Location.Lat, 1e-6)
	assert.InDelta(t, 126.976993, page.Items[0].Location.Lng, 1e-6)
	assert.Zero(t, c.count("searchKeyword"))
}

func TestTourService_ListUsesSearchWithKeyword(t *testing.T) {
	c := &fakeClient{
		searchKeyword: func(p client.SearchKeywordParams) (*domain.Page[domain.ListingItem], error) {
			assert.Equal(t, "궁", p.Keyword)
			return &domain.Page[domain.ListingItem]{Items: listing("9"), TotalCount: 1, PageNo: 1, NumOfRows: 10}, nil
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	page, err := s.List(context.Background(), ListQuery{Keyword: "궁", NumOfRows: 10, PageNo: 1})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Zero(t, c.count("areaBasedList"))
}

func TestTourService_ListCachesPages(t *testing.T) {
	c := &fakeClient{
		areaBasedList: func(p client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
			return &domain.Page[domain.ListingItem]{Items: listing("1"), TotalCount: 1, PageNo: 1, NumOfRows: 10}, nil
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})
	q := ListQuery{AreaCode: "6", NumOfRows: 10, PageNo: 1}

	_, err := s.List(context.Background(), q)
	require.NoError(t, err)
	_, err = s.List(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, c.count("areaBasedList"))
}

func TestTourService_ListPetFriendly(t *testing.T) {
	c := &fakeClient{
		areaBasedList: func(p client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
			return &domain.Page[domain.ListingItem]{Items: listing("1", "2", "3", "4"), TotalCount: 4, PageNo: 1, NumOfRows: 10}, nil
		},
		detailPet: func(id string) (*domain.PetInfoRecord, error) {
			switch id {
			case "1":
				return &domain.PetInfoRecord{ContentID: id, AcmpyTypeCd: "전구역 동반가능"}, nil
			case "2":
				return &domain.PetInfoRecord{ContentID: id, AcmpyTypeCd: "동반불가"}, nil
			case "3":
				return nil, nil
			default:
				return nil, errors.New("boom")
			}
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	page, err := s.List(context.Background(), ListQuery{NumOfRows: 10, PageNo: 1, PetFriendly: true})
	require.NoError(t, err)

	require.Len(t, page.Items, 1)
	assert.Equal(t, "1", page.Items[0].ContentID)
	require.NotNil(t, page.Items[0].Pet)
	assert.Equal(t, 4, page.TotalCount)
	assert.Equal(t, 4, c.count("detailPet"))
}

func TestTourService_ListPropagatesErrors(t *testing.T) {
	c := &fakeClient{
		areaBasedList: func(p client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
			return nil, &client.UpstreamError{Code: "22", Message: "LIMITED_NUMBER_OF_SERVICE_REQUESTS_EXCEEDS_ERROR"}
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	_, err := s.List(context.Background(), ListQuery{NumOfRows: 10, PageNo: 1})
	var upstreamErr *client.UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, "22", upstreamErr.Code)
}

func TestTourService_PetInfo(t *testing.T) {
	c := &fakeClient{
		detailPet: func(id string) (*domain.PetInfoRecord, error) {
			if id == "3" {
				return nil, errors.New("timeout")
			}
			return &domain.PetInfoRecord{ContentID: id}, nil
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	ids := make([]string, 0, 12)
	for i := 1; i <= 12; i++ {
		ids = append(ids, fmt.Sprint(i))
	}
	got := s.PetInfo(context.Background(), ids)

	assert.Len(t, got, 12)
	assert.Nil(t, got["3"])
	assert.Equal(t, "12", got["12"].ContentID)
}

func detailClient() *fakeClient {
	return &fakeClient{
		detailCommon: func(id string) (*domain.DetailRecord, error) {
			return &domain.DetailRecord{
				ListingItem: domain.ListingItem{ContentID: id, ContentTypeID: domain.ContentTypeAttraction, Title: "경복궁", MapX: "1269769930", MapY: "375788222"},
				Overview:    "조선 왕조의 법궁",
			}, nil
		},
		detailIntro: func(id string, ct domain.ContentType) (*domain.IntroRecord, error) {
			return &domain.IntroRecord{ContentID: id, ContentTypeID: ct, Intro: &domain.AttractionIntro{UseTime: "09:00~18:00"}}, nil
		},
		detailImages: func(id string) ([]domain.ImageRecord, error) {
			return []domain.ImageRecord{{ContentID: id, OriginImgURL: "https://img/1.jpg"}}, nil
		},
		detailPet: func(id string) (*domain.PetInfoRecord, error) {
			return nil, nil
		},
	}
}

func TestTourService_Detail(t *testing.T) {
	repo := &fakeDetailRepo{}
	s := newTestTourService(detailClient(), repo)

	bundle, err := s.Detail(context.Background(), "126508", "")
	require.NoError(t, err)

	assert.Equal(t, "경복궁", bundle.Detail.Title)
	require.NotNil(t, bundle.Intro)
	assert.Equal(t, domain.ContentTypeAttraction, bundle.Intro.ContentTypeID)
	assert.Len(t, bundle.Images, 1)
	assert.Nil(t, bundle.Pet)
	assert.NotEqual(t, geo.Fallback, bundle.Location)
	assert.Contains(t, repo.saved, "126508")
}

func TestTourService_DetailDegradesOptionalParts(t *testing.T) {
	c := detailClient()
	c.detailIntro = func(id string, ct domain.ContentType) (*domain.IntroRecord, error) {
		return nil, &client.HTTPError{StatusCode: 500, Status: "500 Internal Server Error"}
	}
	c.detailImages = func(id string) ([]domain.ImageRecord, error) {
		return nil, errors.New("connection reset")
	}
	c.detailPet = func(id string) (*domain.PetInfoRecord, error) {
		return nil, errors.New("connection reset")
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	bundle, err := s.Detail(context.Background(), "126508", domain.ContentTypeAttraction)
	require.NoError(t, err)

	assert.NotNil(t, bundle.Detail)
	assert.Nil(t, bundle.Intro)
	assert.Empty(t, bundle.Images)
	assert.NotNil(t, bundle.Images)
	assert.Nil(t, bundle.Pet)
}

func TestTourService_DetailFailure(t *testing.T) {
	c := detailClient()
	c.detailCommon = func(id string) (*domain.DetailRecord, error) {
		return nil, fmt.Errorf("content %s: %w", id, client.ErrNotFound)
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	_, err := s.Detail(context.Background(), "1", "")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestTourService_DetailCached(t *testing.T) {
	c := detailClient()
	s := newTestTourService(c, &fakeDetailRepo{})

	_, err := s.Detail(context.Background(), "126508", "")
	require.NoError(t, err)
	_, err = s.Detail(context.Background(), "126508", "")
	require.NoError(t, err)

	assert.Equal(t, 1, c.count("detailCommon"))
	assert.Equal(t, 2, c.count("detailImages"))
}

func TestTourService_DetailSnapshotWhenCircuitOpen(t *testing.T) {
	c := detailClient()
	c.detailCommon = func(id string) (*domain.DetailRecord, error) {
		return nil, fmt.Errorf("detailCommon2: %w", client.ErrCircuitOpen)
	}
	repo := &fakeDetailRepo{snapshots: map[string]*domain.DetailRecord{
		"126508": {ListingItem: domain.ListingItem{ContentID: "126508", Title: "경복궁 (snapshot)"}},
	}}
	s := newTestTourService(c, repo)

	bundle, err := s.Detail(context.Background(), "126508", "")
	require.NoError(t, err)
	assert.Equal(t, "경복궁 (snapshot)", bundle.Detail.Title)
	assert.Nil(t, bundle.Intro)

	_, err = s.Detail(context.Background(), "999", "")
	assert.ErrorIs(t, err, client.ErrCircuitOpen)
}

func TestTourService_AreaCodesCached(t *testing.T) {
	c := &fakeClient{
		areaCodes: func(p client.AreaCodeParams) (*domain.Page[domain.AreaCode], error) {
			return &domain.Page[domain.AreaCode]{Items: []domain.AreaCode{{Code: "1", Name: "서울"}, {Code: "6", Name: "부산"}}, TotalCount: 2}, nil
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	first, err := s.AreaCodes(context.Background(), "")
	require.NoError(t, err)
	second, err := s.AreaCodes(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
	assert.Equal(t, 1, c.count("areaCodes"))
}

func TestTourService_Bookmarks(t *testing.T) {
	s := newTestTourService(&fakeClient{}, &fakeDetailRepo{})
	ctx := context.Background()

	empty, err := s.ListBookmarks(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.AddBookmark(ctx, &repository.Bookmark{UserID: "u1", ContentID: "126508", Title: "경복궁"})
	require.NoError(t, err)

	list, err := s.ListBookmarks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.RemoveBookmark(ctx, "u1", "126508"))
	assert.ErrorIs(t, s.RemoveBookmark(ctx, "u1", "126508"), repository.ErrBookmarkNotFound)
}

func TestTourService_Browse(t *testing.T) {
	c := &fakeClient{
		areaBasedList: func(p client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
			start := (p.PageNo-1)*20 + 1
			end := min(p.PageNo*20, 45)
			ids := make([]string, 0, 20)
			for i := start; i <= end; i++ {
				ids = append(ids, fmt.Sprint(i))
			}
			return &domain.Page[domain.ListingItem]{Items: listing(ids...), TotalCount: 45, PageNo: p.PageNo, NumOfRows: 20}, nil
		},
	}
	s := newTestTourService(c, &fakeDetailRepo{})

	agg, err := s.Browse(context.Background(), ListQuery{AreaCode: "1", NumOfRows: 20, PageNo: 7})
	require.NoError(t, err)
	assert.Len(t, agg.Snapshot().Items, 20)

	assert.True(t, agg.LoadMore(context.Background()))
	assert.True(t, agg.LoadMore(context.Background()))
	assert.False(t, agg.LoadMore(context.Background()))

	snap := agg.Snapshot()
	assert.Len(t, snap.Items, 45)
	assert.False(t, snap.HasMore)
	assert.Equal(t, "45", snap.Items[44].ContentID)
	assert.Equal(t, 3, c.count("areaBasedList"))
}

func TestTourService_Collect(t *testing.T) {
	pagedListing := func(failPage int) *fakeClient {
		return &fakeClient{
			areaBasedList: func(p client.AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
				if p.PageNo == failPage {
					return nil, &client.HTTPError{StatusCode: 503, Status: "503 Service Unavailable"}
				}
				ids := make([]string, 0, 20)
				for i := (p.PageNo-1)*20 + 1; i <= min(p.PageNo*20, 45); i++ {
					ids = append(ids, fmt.Sprint(i))
				}
				return &domain.Page[domain.ListingItem]{Items: listing(ids...), TotalCount: 45, PageNo: p.PageNo, NumOfRows: 20}, nil
			},
		}
	}

	t.Run("stops at the requested page count", func(t *testing.T) {
		c := pagedListing(0)
		snap, err := newTestTourService(c, &fakeDetailRepo{}).Collect(context.Background(), ListQuery{AreaCode: "1", NumOfRows: 20}, 2)
		require.NoError(t, err)

		assert.Len(t, snap.Items, 40)
		assert.Equal(t, 2, snap.PageNo)
		assert.True(t, snap.HasMore)
		assert.Equal(t, 2, c.count("areaBasedList"))
	})

	t.Run("stops early when exhausted", func(t *testing.T) {
		c := pagedListing(0)
		snap, err := newTestTourService(c, &fakeDetailRepo{}).Collect(context.Background(), ListQuery{AreaCode: "1", NumOfRows: 20}, 10)
		require.NoError(t, err)

		assert.Len(t, snap.Items, 45)
		assert.False(t, snap.HasMore)
		assert.Equal(t, 3, c.count("areaBasedList"))
	})

	t.Run("keeps loaded pages on failure", func(t *testing.T) {
		c := pagedListing(2)
		snap, err := newTestTourService(c, &fakeDetailRepo{}).Collect(context.Background(), ListQuery{AreaCode: "1", NumOfRows: 20}, 2)
		require.NoError(t, err)

		assert.Len(t, snap.Items, 20)
		assert.Equal(t, 1, snap.PageNo)
		assert.NotEmpty(t, snap.Error)
	})

	t.Run("first page failure is returned", func(t *testing.T) {
		_, err := newTestTourService(pagedListing(1), &fakeDetailRepo{}).Collect(context.Background(), ListQuery{AreaCode: "1", NumOfRows: 20}, 3)
		var httpErr *client.HTTPError
		assert.ErrorAs(t, err, &httpErr)
	})
}
