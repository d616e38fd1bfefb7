package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tourkorea/explorer/internal/config"
	"tourkorea/explorer/internal/proxy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFailingProxy(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "tourapi.test", r.Host)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

// Run with -race: concurrent retries rotate the proxy while other requests are dialing.
func TestTourClient_ConcurrentRetriesRotateProxies(t *testing.T) {
	first, firstHits := newFailingProxy(t)
	second, secondHits := newFailingProxy(t)

	c := NewTourClient(config.TourAPIConfig{
		BaseURL:         "http://tourapi.test",
		ServiceKey:      "test-key",
		MobileOS:        "ETC",
		MobileApp:       "TourKorea",
		Timeout:         5,
		MaxRetries:      2,
		BreakerFailures: 100,
	}, proxy.NewStaticSupplier([]string{first.URL, second.URL}))
	c.(*tourClient).executor.sleep = func(context.Context, time.Duration) error { return nil }

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.DetailPet(context.Background(), "126508")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		var httpErr *HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	}
	assert.Equal(t, int32(20), atomic.LoadInt32(firstHits)+atomic.LoadInt32(secondHits))
	assert.Positive(t, atomic.LoadInt32(firstHits))
	assert.Positive(t, atomic.LoadInt32(secondHits))
}

func TestEgress_AdvanceRoundRobin(t *testing.T) {
	e := newEgress(proxy.NewStaticSupplier([]string{"http://a:1", "http://b:2"}))
	req := httptest.NewRequest(http.MethodGet, "http://tourapi.test/areaCode2", nil)

	u, err := e.proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "a:1", u.Host)

	e.advance()
	u, err = e.proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "b:2", u.Host)

	e.advance()
	u, err = e.proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "a:1", u.Host)
}

func TestEgress_SingleProxyStays(t *testing.T) {
	e := newEgress(proxy.NewStaticSupplier([]string{"http://a:1"}))
	e.advance()

	u, err := e.proxy(httptest.NewRequest(http.MethodGet, "http://tourapi.test/areaCode2", nil))
	require.NoError(t, err)
	assert.Equal(t, "a:1", u.Host)
}
