package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/luckydraw/internal/game/prize"
)

func TestMetrics_CountsDraws(t *testing.T) {
	m := NewMetrics()
	grand := prize.Default()[3]

	m.DrawStarted(grand)
	m.DrawIgnored()
	m.DrawIgnored()
	m.DrawSettled(grand, 4*time.Second)
	m.FeedbackFailed("haptics")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.drawsStarted.WithLabelValues("4")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.drawsIgnored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.drawsSettled.WithLabelValues("4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedbackFails.WithLabelValues("haptics")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.spinDuration))
}

func TestMetrics_SessionsGauge(t *testing.T) {
	m := NewMetrics()
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessions))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.DrawSettled(prize.Default()[0], time.Second)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `luckydraw_draws_settled_total{prize_id="1"} 1`)
}

func TestMetricsServer_StartStop(t *testing.T) {
	m := NewMetrics()
	srv := NewMetricsServer("127.0.0.1:0", m, zaptest.NewLogger(t))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "luckydraw_frontend_active_sessions")

	resp, err = http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))

	resp, err = http.Post("http://"+srv.Addr()+"/metrics", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	srv.Stop()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("metrics server did not stop in time")
	}
}
