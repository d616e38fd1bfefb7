package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tourkorea/explorer/internal/config"
	"tourkorea/explorer/internal/domain"
	"tourkorea/explorer/internal/metrics"
	"tourkorea/explorer/internal/proxy"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// TourClient is the Korea Tourism Organization TourAPI (KorService2).
type TourClient interface {
	AreaCodes(ctx context.Context, params AreaCodeParams) (*domain.Page[domain.AreaCode], error)
	AreaBasedList(ctx context.Context, params AreaBasedListParams) (*domain.Page[domain.ListingItem], error)
	SearchKeyword(ctx context.Context, params SearchKeywordParams) (*domain.Page[domain.ListingItem], error)
	DetailCommon(ctx context.Context, contentID string) (*domain.DetailRecord, error)
	DetailIntro(ctx context.Context, contentID string, contentType domain.ContentType) (*domain.IntroRecord, error)
	DetailImages(ctx context.Context, contentID string) ([]domain.ImageRecord, error)
	// DetailPet returns nil, nil when the upstream has no pet data for contentID.
	DetailPet(ctx context.Context, contentID string) (*domain.PetInfoRecord, error)
}

type tourClient struct {
	baseURL  string
	identity Identity
	executor *retryExecutor
	breaker  *gobreaker.CircuitBreaker[[]byte]
}

func NewTourClient(cfg config.TourAPIConfig, proxies proxy.Supplier) TourClient {
	httpClient := resty.New().
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "tourkorea-explorer/1.0")

	egress := newEgress(proxies)
	egress.install(httpClient)

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &tourClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		identity: Identity{
			ServiceKey: cfg.ServiceKey,
			MobileOS:   cfg.MobileOS,
			MobileApp:  cfg.MobileApp,
		},
		executor: newRetryExecutor(httpClient, rl, egress, cfg.MaxRetries, time.Duration(cfg.Timeout)*time.Second),
		breaker:  newBreaker(cfg.BreakerFailures, time.Duration(cfg.BreakerTimeout)*time.Second),
	}
}

func (c *tourClient) AreaCodes(ctx context.Context, params AreaCodeParams) (*domain.Page[domain.AreaCode], error) {
	query, err := BuildAreaCodeQuery(c.identity, params)
	if err != nil {
		return nil, err
	}
	result, err := fetch[domain.AreaCode](ctx, c, OpAreaCode, query)
	if err != nil {
		return nil, err
	}
	return toPage(result), nil
}

func (c *tourClient) AreaBasedList(ctx context.Context, params AreaBasedListParams) (*domain.Page[domain.ListingItem], error) {
	query, err := BuildAreaBasedListQuery(c.identity, params)
	if err != nil {
		return nil, err
	}
	result, err := fetch[domain.ListingItem](ctx, c, OpAreaBasedList, query)
	if err != nil {
		return nil, err
	}
	return toPage(result), nil
}

func (c *tourClient) SearchKeyword(ctx context.Context, params SearchKeywordParams) (*domain.Page[domain.ListingItem], error) {
	query, err := BuildSearchKeywordQuery(c.identity, params)
	if err != nil {
		return nil, err
	}
	result, err := fetch[domain.ListingItem](ctx, c, OpSearchKeyword, query)
	if err != nil {
		return nil, err
	}
	return toPage(result), nil
}

func (c *tourClient) DetailCommon(ctx context.Context, contentID string) (*domain.DetailRecord, error) {
	query, err := BuildDetailCommonQuery(c.identity, contentID)
	if err != nil {
		return nil, err
	}
	result, err := fetch[domain.DetailRecord](ctx, c, OpDetailCommon, query)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, fmt.Errorf("content %s: %w", contentID, ErrNotFound)
	}

	detail := result.Items[0]
	detail.Normalize()
	return &detail, nil
}

func (c *tourClient) DetailIntro(ctx context.Context, contentID string, contentType domain.ContentType) (*domain.IntroRecord, error) {
	query, err := BuildDetailIntroQuery(c.identity, contentID, contentType)
	if err != nil {
		return nil, err
	}
	result, err := fetch[json.RawMessage](ctx, c, OpDetailIntro, query)
	if err != nil {
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}

	intro, err := domain.DecodeIntro(contentType, result.Items[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	return &domain.IntroRecord{
		ContentID:     contentID,
		ContentTypeID: contentType,
		Intro:         intro,
	}, nil
}

func (c *tourClient) DetailImages(ctx context.Context, contentID string) ([]domain.ImageRecord, error) {
	query, err := BuildDetailImageQuery(c.identity, contentID)
	if err != nil {
		return nil, err
	}
	result, err := fetch[domain.ImageRecord](ctx, c, OpDetailImage, query)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (c *tourClient) DetailPet(ctx context.Context, contentID string) (*domain.PetInfoRecord, error) {
	query, err := BuildDetailPetQuery(c.identity, contentID)
	if err != nil {
		return nil, err
	}
	result, err := fetch[domain.PetInfoRecord](ctx, c, OpDetailPet, query)
	if err != nil {
		if isNotFound(err) {
			log.Debugf("No pet data for %s: %v", contentID, err)
			return nil, nil
		}
		return nil, err
	}
	if len(result.Items) == 0 {
		return nil, nil
	}
	return &result.Items[0], nil
}

// isNotFound matches the "no data" shapes: HTTP 404, the upstream no-data code, or ErrNotFound.
func isNotFound(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == 404 {
		return true
	}
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.NotFound() {
		return true
	}
	return errors.Is(err, ErrNotFound)
}

// fetch runs one operation through the breaker and the retry executor, then parses the envelope.
func fetch[T any](ctx context.Context, c *tourClient, op Operation, query string) (*Result[T], error) {
	url := fmt.Sprintf("%s/%s?%s", c.baseURL, op, query)
	start := time.Now()

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.executor.Execute(ctx, url)
	})
	if err != nil {
		err = breakerError(err)
		metrics.RecordUpstream(op.String(), outcome(err), time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := Parse[T](body)
	if err != nil {
		metrics.RecordUpstream(op.String(), outcome(err), time.Since(start))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordUpstream(op.String(), "success", time.Since(start))
	log.Debugf("Fetched %s: %d items (page %d, total %d)", op, len(result.Items), result.PageNo, result.TotalCount)
	return result, nil
}

func toPage[T any](result *Result[T]) *domain.Page[T] {
	return &domain.Page[T]{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		PageNo:     result.PageNo,
		NumOfRows:  result.NumOfRows,
	}
}

func outcome(err error) string {
	var httpErr *HTTPError
	var upstreamErr *UpstreamError
	switch {
	case errors.Is(err, ErrCircuitOpen):
		return "rejected"
	case errors.Is(err, ErrMalformedEnvelope):
		return "malformed"
	case errors.As(err, &upstreamErr):
		return "upstream_error"
	case errors.As(err, &httpErr) && !httpErr.Retryable():
		return "client_error"
	case errors.As(err, &httpErr):
		return "server_error"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "network"
	}
}
