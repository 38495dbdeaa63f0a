package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ExposesCollectors(t *testing.T) {
	SprintTransitions.WithLabelValues(ActionClose).Inc()
	RolledOverTickets.Add(3)

	srv := NewServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "tandem_sprint_transitions_total")
	assert.Contains(t, string(body), "tandem_sprint_rolled_over_tickets_total")
}

func TestServer_UnknownPath(t *testing.T) {
	srv := NewServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(Invites.WithLabelValues(InviteFailed))
	Invites.WithLabelValues(InviteFailed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(Invites.WithLabelValues(InviteFailed)))
}
