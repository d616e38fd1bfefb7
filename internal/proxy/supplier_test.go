package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticSupplier_RoundRobin(t *testing.T) {
	s := NewStaticSupplier([]string{"http://a:1", "http://b:2"})

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, "http://a:1", s.Next())
	assert.Equal(t, "http://b:2", s.Next())
	assert.Equal(t, "http://a:1", s.Next())
}

func TestSupplier_Empty(t *testing.T) {
	s := NewSupplier(context.Background(), nil, "http://unused")

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Next())
}

func TestSupplier_DropsUnreachableProxy(t *testing.T) {
	// A plain HTTP server acts as a forward proxy for http:// targets: it answers every request itself.
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer working.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	s := NewSupplier(context.Background(), []string{working.URL, deadURL}, "http://tourapi.invalid/")

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, working.URL, s.Next())
}
