package client

import (
	"net/http"
	"net/url"
	"sync/atomic"

	"tourkorea/explorer/internal/proxy"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

// egress picks the outbound proxy per request. The transport reads the current proxy on every
// dial; the retry path advances it.
type egress struct {
	proxies proxy.Supplier
	current atomic.Pointer[url.URL]
}

func newEgress(proxies proxy.Supplier) *egress {
	e := &egress{proxies: proxies}
	if proxies != nil {
		if proxyURL := proxies.Next(); e.set(proxyURL) {
			log.Infof("🔗 Using initial proxy: %s", proxyURL)
		}
	}
	return e
}

// advance moves to the next proxy; a no-op with fewer than two proxies.
func (e *egress) advance() {
	if e == nil || e.proxies == nil || e.proxies.Len() < 2 {
		return
	}
	if next := e.proxies.Next(); e.set(next) {
		log.Infof("🔗 Switching egress proxy to %s", next)
	}
}

func (e *egress) set(proxyURL string) bool {
	if proxyURL == "" {
		return false
	}
	u, err := url.Parse(proxyURL)
	if err != nil {
		log.Warnf("⚠️ Ignoring invalid proxy URL %q: %v", proxyURL, err)
		return false
	}
	e.current.Store(u)
	return true
}

// proxy is installed as http.Transport.Proxy. Without a configured proxy the environment decides.
func (e *egress) proxy(req *http.Request) (*url.URL, error) {
	if u := e.current.Load(); u != nil {
		return u, nil
	}
	return http.ProxyFromEnvironment(req)
}

// install points the client's transport at e once, before any request is sent.
func (e *egress) install(httpClient *resty.Client) {
	transport, err := httpClient.HTTPTransport()
	if err != nil {
		log.Warnf("⚠️ Proxy rotation disabled: %v", err)
		return
	}
	transport.Proxy = e.proxy
}
