package httpapi_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtding233/montyhall/internal/config"
	"github.com/xtding233/montyhall/internal/host"
	"github.com/xtding233/montyhall/internal/httpapi"
	"github.com/xtding233/montyhall/internal/monty"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := config.DefaultSettings()
	s.Seed = 7
	srv := httptest.NewServer(httpapi.New(host.New(s, nil), nil).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, out any) int {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type newRound struct {
	ID    string      `json:"id"`
	Round monty.Round `json:"round"`
}

type apiErr struct {
	Err string `json:"err"`
}

func TestRoundFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	var created newRound
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/rounds", &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, monty.PhaseInitial, created.Round.Phase)
	base := srv.URL + "/rounds/" + created.ID

	var picked monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/pick?door=1", &picked))
	assert.Equal(t, monty.PhasePicked, picked.Phase)
	assert.Equal(t, 1, picked.SelectedDoorID)
	assert.False(t, picked.Doors[picked.RevealedDoorID].HasCar)

	var got monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base, &got))
	assert.Equal(t, picked, got)

	var resolved monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/switch", &resolved))
	assert.Equal(t, monty.PhaseResolved, resolved.Phase)
	assert.Equal(t, picked.OtherDoorID(), resolved.SelectedDoorID)
	assert.Equal(t, resolved.Doors[resolved.SelectedDoorID].HasCar, resolved.Won)

	var stats host.ScoreboardSnapshot
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/stats", &stats))
	assert.Equal(t, 1, stats.Switched.Plays)

	var reset monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/reset", &reset))
	assert.Equal(t, monty.PhaseInitial, reset.Phase)
}

func TestRoundErrorsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	var created newRound
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/rounds", &created))
	base := srv.URL + "/rounds/" + created.ID

	tests := []struct {
		name   string
		method string
		url    string
		status int
	}{
		{"keep before pick", http.MethodPost, base + "/keep", http.StatusConflict},
		{"switch before pick", http.MethodPost, base + "/switch?door=2", http.StatusConflict},
		{"pick out of range", http.MethodPost, base + "/pick?door=3", http.StatusBadRequest},
		{"pick missing door", http.MethodPost, base + "/pick", http.StatusBadRequest},
		{"pick bad door", http.MethodPost, base + "/pick?door=x", http.StatusBadRequest},
		{"unknown session", http.MethodGet, srv.URL + "/rounds/missing", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e apiErr
			assert.Equal(t, tt.status, do(t, tt.method, tt.url, &e))
			assert.NotEmpty(t, e.Err)
		})
	}

	var round monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base, &round))
	assert.Equal(t, created.Round, round, "rejected requests must not change the round")
}

type rawRound struct {
	Phase monty.Phase      `json:"phase"`
	Doors []map[string]any `json:"doors"`
}

func carDoors(r rawRound) (known, cars int) {
	for _, d := range r.Doors {
		if v, ok := d["has_car"]; ok {
			known++
			if v == true {
				cars++
			}
		}
	}
	return known, cars
}

func TestClosedDoorsHideCarUntilResolved(t *testing.T) {
	srv := newTestServer(t)
	var created struct {
		ID    string   `json:"id"`
		Round rawRound `json:"round"`
	}
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/rounds", &created))
	known, _ := carDoors(created.Round)
	assert.Zero(t, known, "no door contents before the pick")
	base := srv.URL + "/rounds/" + created.ID

	var picked rawRound
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/pick?door=2", &picked))
	known, cars := carDoors(picked)
	assert.Equal(t, 1, known, "only the opened door is shown")
	assert.Zero(t, cars)

	var got rawRound
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, base, &got))
	known, _ = carDoors(got)
	assert.Equal(t, 1, known)

	var resolved rawRound
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/keep", &resolved))
	assert.Equal(t, monty.PhaseResolved, resolved.Phase)
	known, cars = carDoors(resolved)
	assert.Equal(t, monty.NumDoors, known)
	assert.Equal(t, 1, cars)
}

func TestSwitchToSelectedDoorRejected(t *testing.T) {
	srv := newTestServer(t)
	var created newRound
	require.Equal(t, http.StatusCreated, do(t, http.MethodPost, srv.URL+"/rounds", &created))
	base := srv.URL + "/rounds/" + created.ID

	var picked monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/pick?door=0", &picked))

	var e apiErr
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, base+"/switch?door=0", &e))
	assert.Contains(t, e.Err, "invalid move")

	var kept monty.Round
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, base+"/keep", &kept))
	assert.False(t, kept.Switched)
}

func TestSimulateOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	var rec host.Record
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/simulate?n=1000&strategy=keep", &rec))
	assert.Equal(t, 1000, rec.Trials)
	assert.Equal(t, monty.StrategyKeep, rec.Strategy)
	assert.InDelta(t, 33.3, rec.WinPercentage, 6)

	// defaults: 100 trials, switch
	var def host.Record
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/simulate", &def))
	assert.Equal(t, 100, def.Trials)
	assert.Equal(t, monty.StrategySwitch, def.Strategy)

	var hist struct {
		Results []host.Record `json:"results"`
	}
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/history", &hist))
	require.Len(t, hist.Results, 2)
	assert.Equal(t, def.ID, hist.Results[0].ID)

	for _, q := range []string{"n=0", "n=-5", "n=1001", "n=abc", "strategy=stay"} {
		var e apiErr
		assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/simulate?"+q, &e), q)
	}
}

func TestBatchesOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	var st monty.Stats
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/simulate/batches?batches=20&n=500&strategy=switch", &st))
	assert.Equal(t, 20, st.Batches)
	assert.InDelta(t, 66.7, st.Mean, 3)

	var e apiErr
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodGet, srv.URL+"/simulate/batches?batches=0", &e))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
