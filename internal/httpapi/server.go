// Package httpapi exposes the host as JSON over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/xtding233/montyhall/internal/host"
	"github.com/xtding233/montyhall/internal/monty"
)

type errResp struct {
	Err string `json:"err"`
}

type newRoundResp struct {
	ID    string    `json:"id"`
	Round roundView `json:"round"`
}

type doorView struct {
	ID         int   `json:"id"`
	HasCar     *bool `json:"has_car,omitempty"`
	IsOpen     bool  `json:"is_open"`
	IsSelected bool  `json:"is_selected"`
}

// roundView is the client-facing round. Closed doors keep their contents
// hidden until the round resolves.
type roundView struct {
	Doors          [monty.NumDoors]doorView `json:"doors"`
	SelectedDoorID int                      `json:"selected_door_id"`
	RevealedDoorID int                      `json:"revealed_door_id"`
	Phase          monty.Phase              `json:"phase"`
	Won            bool                     `json:"won"`
	Switched       bool                     `json:"switched"`
}

func viewOf(r monty.Round) roundView {
	v := roundView{
		SelectedDoorID: r.SelectedDoorID,
		RevealedDoorID: r.RevealedDoorID,
		Phase:          r.Phase,
		Won:            r.Won,
		Switched:       r.Switched,
	}
	for i, d := range r.Doors {
		v.Doors[i] = doorView{ID: d.ID, IsOpen: d.IsOpen, IsSelected: d.IsSelected}
		if d.IsOpen || r.Phase == monty.PhaseResolved {
			hasCar := d.HasCar
			v.Doors[i].HasCar = &hasCar
		}
	}
	return v
}

type historyResp struct {
	Results []host.Record `json:"results"`
}

// Server routes HTTP requests to a Host.
type Server struct {
	host   *host.Host
	logger *log.Logger
	mux    *http.ServeMux
}

// New builds the handler set. A nil logger discards output.
func New(h *host.Host, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{host: h, logger: logger.WithPrefix("http"), mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /rounds", s.handleNewRound)
	s.mux.HandleFunc("GET /rounds/{id}", s.handleGetRound)
	s.mux.HandleFunc("POST /rounds/{id}/pick", s.handlePick)
	s.mux.HandleFunc("POST /rounds/{id}/keep", s.handleKeep)
	s.mux.HandleFunc("POST /rounds/{id}/switch", s.handleSwitch)
	s.mux.HandleFunc("POST /rounds/{id}/reset", s.handleReset)
	s.mux.HandleFunc("GET /simulate", s.handleSimulate)
	s.mux.HandleFunc("GET /simulate/batches", s.handleBatches)
	s.mux.HandleFunc("GET /history", s.handleHistory)
	s.mux.HandleFunc("GET /stats", s.handleStats)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func parseInt(r *http.Request, key string) (int, bool, string) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false, ""
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, "invalid " + key
	}
	return n, true, ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, host.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, monty.ErrWrongPhase):
		return http.StatusConflict
	case errors.Is(err, host.ErrTooManySessions):
		return http.StatusServiceUnavailable
	case errors.Is(err, monty.ErrInvalidMove), errors.Is(err, monty.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errResp{Err: err.Error()})
}

func (s *Server) writeRound(w http.ResponseWriter, r *http.Request, round monty.Round, err error) {
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(round))
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	id, round, err := s.host.NewRound()
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRoundResp{ID: id, Round: viewOf(round)})
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.host.Round(r.PathValue("id"))
	s.writeRound(w, r, round, err)
}

func (s *Server) handlePick(w http.ResponseWriter, r *http.Request) {
	door, ok, msg := parseInt(r, "door")
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	if !ok {
		writeJSON(w, http.StatusBadRequest, errResp{Err: "missing param door"})
		return
	}
	round, err := s.host.Pick(r.PathValue("id"), door)
	s.writeRound(w, r, round, err)
}

func (s *Server) handleKeep(w http.ResponseWriter, r *http.Request) {
	round, err := s.host.Keep(r.PathValue("id"))
	s.writeRound(w, r, round, err)
}

// no door => the one remaining closed door
func (s *Server) handleSwitch(w http.ResponseWriter, r *http.Request) {
	door, ok, msg := parseInt(r, "door")
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	var (
		round monty.Round
		err   error
	)
	if ok {
		round, err = s.host.SwitchTo(r.PathValue("id"), door)
	} else {
		round, err = s.host.Switch(r.PathValue("id"))
	}
	s.writeRound(w, r, round, err)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	round, err := s.host.Reset(r.PathValue("id"))
	s.writeRound(w, r, round, err)
}

// simParams reads n and strategy, falling back to the configured defaults.
func (s *Server) simParams(r *http.Request) (int, monty.Strategy, string) {
	settings := s.host.Settings()
	n, ok, msg := parseInt(r, "n")
	if msg != "" {
		return 0, "", msg
	}
	if !ok {
		n = settings.DefaultTrials
	}
	strategy := settings.DefaultStrategy
	if v := r.URL.Query().Get("strategy"); v != "" {
		st, err := monty.ParseStrategy(v)
		if err != nil {
			return 0, "", "invalid strategy"
		}
		strategy = st
	}
	return n, strategy, ""
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	n, strategy, msg := s.simParams(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	rec, err := s.host.Simulate(r.Context(), n, strategy)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	n, strategy, msg := s.simParams(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	batches, ok, msg := parseInt(r, "batches")
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errResp{Err: msg})
		return
	}
	if !ok {
		batches = 10
	}
	st, err := s.host.Batches(batches, n, strategy)
	if err != nil {
		s.writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, historyResp{Results: s.host.History()})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.host.Scoreboard())
}
