package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TurtIeSocks/account-manager/internal/domain/model"
)

func testStats() model.RunStats {
	rec := model.RunStats{
		RunID:       "run-1",
		NewAccounts: 150,
		NewThirties: 12,
		Timestamp:   1700000000000,
	}
	rec.SetRouted("eu1", 6)
	rec.SetRouted("us1", 6)
	return rec
}

// TestNotifier_PayloadShape pins the two-embed payload: run counts first,
// cumulative matured counts second.
func TestNotifier_PayloadShape(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewNotifier(srv.URL)
	err := n.Send(context.Background(), testStats(), []string{"eu1", "us1"}, map[string]int64{"eu1": 4200, "us1": 1380})
	require.NoError(t, err)

	var payload struct {
		Content any `json:"content"`
		Embeds  []struct {
			Title  string `json:"title"`
			Color  int    `json:"color"`
			Fields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"fields"`
			Timestamp string `json:"timestamp"`
		} `json:"embeds"`
	}
	require.NoError(t, json.Unmarshal(captured, &payload))

	assert.Nil(t, payload.Content)
	require.Len(t, payload.Embeds, 2)

	run := payload.Embeds[0]
	assert.Equal(t, "Leveling Stats", run.Title)
	assert.Equal(t, embedColor, run.Color)
	require.Len(t, run.Fields, 4)
	assert.Equal(t, "Number of Level 0s Created", run.Fields[0].Name)
	assert.Equal(t, "150", run.Fields[0].Value)
	assert.Equal(t, "Number of Level 30s Created", run.Fields[1].Name)
	assert.Equal(t, "12", run.Fields[1].Value)
	assert.Equal(t, "Number of Level 30s Added to eu1", run.Fields[2].Name)
	assert.Equal(t, "6", run.Fields[2].Value)

	fresh := payload.Embeds[1]
	assert.Equal(t, "Fresh Accounts", fresh.Title)
	require.Len(t, fresh.Fields, 2)
	assert.Equal(t, "Number of Level 30s in eu1", fresh.Fields[0].Name)
	assert.Equal(t, "4200", fresh.Fields[0].Value)
}

// TestNotifier_ZeroShownForUnroutedDestination: a destination with no
// routed accounts still appears in the run embed with value 0.
func TestNotifier_ZeroShownForUnroutedDestination(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	rec := model.RunStats{RunID: "run-1"}
	require.NoError(t, NewNotifier(srv.URL).Send(context.Background(), rec, []string{"eu1"}, nil))

	assert.Contains(t, string(captured), `"Number of Level 30s Added to eu1","value":"0"`)
}

// TestNotifier_MissingMaturedCountOmitted: a destination whose count query
// failed reports nothing in the fresh-accounts embed.
func TestNotifier_MissingMaturedCountOmitted(t *testing.T) {
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL).Send(context.Background(), testStats(), []string{"eu1", "us1"}, map[string]int64{"eu1": 10})
	require.NoError(t, err)

	assert.Contains(t, string(captured), "Number of Level 30s in eu1")
	assert.NotContains(t, string(captured), "Number of Level 30s in us1")
}

func TestNotifier_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewNotifier(srv.URL).Send(context.Background(), testStats(), nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestNotifier_NetworkFailureIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := NewNotifier(srv.URL).Send(context.Background(), testStats(), nil, nil)
	require.Error(t, err)
}

func TestNotifier_EmptyURLSendsNothing(t *testing.T) {
	require.NoError(t, NewNotifier("").Send(context.Background(), testStats(), nil, nil))
}
