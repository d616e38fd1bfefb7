package proxy

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// Supplier hands out egress proxies for TourAPI calls in round-robin order
type Supplier interface {
	// Next returns the next proxy URL, or "" when egress is direct
	Next() string
	Len() int
}

type supplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewSupplier probes every configured proxy against probeURL and keeps the ones that answer
func NewSupplier(ctx context.Context, proxies []string, probeURL string) Supplier {
	if len(proxies) == 0 {
		return &supplier{}
	}

	log.Infof("🔄 Probing %d egress proxies...", len(proxies))

	results := make([]bool, len(proxies))
	semaphore := make(chan struct{}, 10)
	var wg sync.WaitGroup

	for i, proxyURL := range proxies {
		wg.Add(1)

		go func(index int, proxyURL string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[index] = probe(ctx, proxyURL, probeURL)
		}(i, proxyURL)
	}
	wg.Wait()

	healthy := make([]string, 0, len(proxies))
	for i, ok := range results {
		if ok {
			healthy = append(healthy, proxies[i])
		} else {
			log.Warnf("❌ Proxy %s failed probe, skipping", proxies[i])
		}
	}

	log.Infof("✅ Egress ready with %d/%d proxies", len(healthy), len(proxies))
	return &supplier{proxies: healthy}
}

// NewStaticSupplier uses proxies as given, without probing
func NewStaticSupplier(proxies []string) Supplier {
	return &supplier{proxies: append([]string(nil), proxies...)}
}

func (s *supplier) Next() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.proxies) == 0 {
		return ""
	}

	proxyURL := s.proxies[s.current]
	s.current = (s.current + 1) % len(s.proxies)
	return proxyURL
}

func (s *supplier) Len() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.proxies)
}

// probe treats any HTTP answer below 500 as a working proxy; the TourAPI base URL itself returns 4xx without a path.
func probe(ctx context.Context, proxyURL, probeURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL)
	defer client.Close()

	resp, err := client.R().
		SetContext(ctx).
		Get(probeURL)
	if err != nil {
		log.Debugf("Proxy probe failed for %s: %v", proxyURL, err)
		return false
	}

	return resp.StatusCode() < 500
}
