package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexServer(t *testing.T, status int) (string, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != indexPath {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	return strings.TrimPrefix(srv.URL, "http://"), &hits
}

func TestIndexURL(t *testing.T) {
	assert.Equal(t, "http://arnie/simple/", IndexURL("arnie"))
	assert.Equal(t, "http://127.0.0.1:8080/simple/", IndexURL("127.0.0.1:8080/"))
	assert.Equal(t, "https://pypi.example.com/simple/", IndexURL("https://pypi.example.com"))
}

func TestProber_ResolvesFirstHealthyCandidate(t *testing.T) {
	down, _ := indexServer(t, http.StatusServiceUnavailable)
	up, _ := indexServer(t, http.StatusOK)
	later, laterHits := indexServer(t, http.StatusOK)

	got, err := NewProber(time.Second).Resolve(context.Background(), []string{down, up, later})
	require.NoError(t, err)
	assert.Equal(t, up, got)
	assert.EqualValues(t, 0, laterHits.Load())
}

func TestProber_NoCandidateResponds(t *testing.T) {
	down, _ := indexServer(t, http.StatusNotFound)

	_, err := NewProber(time.Second).Resolve(context.Background(), []string{down})
	assert.ErrorIs(t, err, ErrNoServer)

	_, err = NewProber(time.Second).Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoServer)
}

func TestProber_BreakerSkipsFailingCandidate(t *testing.T) {
	down, hits := indexServer(t, http.StatusInternalServerError)
	p := NewProber(time.Second)

	for range 3 {
		_, err := p.Resolve(context.Background(), []string{down})
		require.Error(t, err)
	}
	assert.EqualValues(t, 3, hits.Load())

	_, err := p.Resolve(context.Background(), []string{down})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.EqualValues(t, 3, hits.Load())
}

func TestProber_Canceled(t *testing.T) {
	up, hits := indexServer(t, http.StatusOK)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProber(time.Second).Resolve(ctx, []string{up})
	assert.ErrorIs(t, err, context.Canceled)
	assert.EqualValues(t, 0, hits.Load())
}
