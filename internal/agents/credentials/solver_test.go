package credentials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSolver(t *testing.T, handler http.Handler) *CaptchaSolver {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := NewCaptchaSolver("test-key")
	s.baseURL = srv.URL
	s.pollInterval = 10 * time.Millisecond
	s.pollTimeout = time.Second
	return s
}

func TestSolveImage(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "test-key", r.Form.Get("key"))
		assert.Equal(t, "base64", r.Form.Get("method"))
		assert.NotEmpty(t, r.Form.Get("body"))
		w.Write([]byte(`{"status":1,"request":"42"}`))
	})
	mux.HandleFunc("/res.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("id"))
		if polls.Add(1) < 2 {
			w.Write([]byte(`{"status":0,"request":"CAPCHA_NOT_READY"}`))
			return
		}
		w.Write([]byte(`{"status":1,"request":"XK72P"}`))
	})

	s := newTestSolver(t, mux)
	answer, err := s.SolveImage(context.Background(), []byte("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "XK72P", answer)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestSolveImageSubmitRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"request":"ERROR_WRONG_USER_KEY"}`))
	})

	s := newTestSolver(t, mux)
	_, err := s.SolveImage(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR_WRONG_USER_KEY")
}

func TestSolveImagePollError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"request":"7"}`))
	})
	mux.HandleFunc("/res.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"request":"ERROR_CAPTCHA_UNSOLVABLE"}`))
	})

	s := newTestSolver(t, mux)
	_, err := s.SolveImage(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ERROR_CAPTCHA_UNSOLVABLE")
}

func TestSolveImageTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"request":"7"}`))
	})
	mux.HandleFunc("/res.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"request":"CAPCHA_NOT_READY"}`))
	})

	s := newTestSolver(t, mux)
	s.pollTimeout = 50 * time.Millisecond
	_, err := s.SolveImage(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not solved within")
}

func TestSolveImageContextCanceled(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/in.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"request":"7"}`))
	})
	mux.HandleFunc("/res.php", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"request":"CAPCHA_NOT_READY"}`))
	})

	s := newTestSolver(t, mux)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.SolveImage(ctx, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}