package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAPICall("/patient/dashboard", 200, 20*time.Millisecond)
	c.RecordAPICall("/patient/dashboard", 401, 5*time.Millisecond)
	c.RecordAPITransportError("/login")
	c.RecordSessionTransition("authenticated")
	c.RecordSessionTransition("anonymous")
	c.RecordForcedLogout(401)
	c.RecordStaleResponse("login")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiCalls.WithLabelValues("/patient/dashboard", "401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.apiTransport.WithLabelValues("/login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.forcedLogouts.WithLabelValues("401")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.staleResponses.WithLabelValues("login")))

	n, err := testutil.GatherAndCount(reg, "portal_session_transitions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}

func TestHandler_ServesExposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg).RecordForcedLogout(403)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), `portal_session_forced_logouts_total{status="403"} 1`), string(b))
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	r.RecordAPICall("/x", 200, time.Second)
	r.RecordAPITransportError("/x")
	r.RecordSessionTransition("anonymous")
	r.RecordForcedLogout(401)
	r.RecordStaleResponse("register")
}
