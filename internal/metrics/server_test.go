package metrics

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ServesScrapes(t *testing.T) {
	StatusMessagesTotal.WithLabelValues("radio_status").Inc()

	s := NewServer("127.0.0.1:0", "")
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	require.NotEmpty(t, s.Addr())

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", s.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "rlmon_status_messages_total"))
}

func TestServer_StartFailsOnBadAddress(t *testing.T) {
	s := NewServer("256.0.0.1:bogus", "")
	assert.Error(t, s.Start(context.Background()))
}

func TestServer_StopBeforeStart(t *testing.T) {
	s := NewServer("127.0.0.1:0", "/metrics")
	assert.NoError(t, s.Stop(context.Background()))
}
