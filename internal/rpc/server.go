// Package rpc exposes the oracle over a small JSON HTTP surface: submit an
// operation, read the storage document and its pieces, query ticket history,
// subscribe to the event stream. The read endpoints deliberately match what
// the polling feeder bot consumes: the counter, then the ticket by id.
package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tzoracle/oracled/internal/core/effect"
	"github.com/tzoracle/oracled/internal/core/op"
	"github.com/tzoracle/oracled/internal/dispatch"
	"github.com/tzoracle/oracled/internal/storage/statestore"
	"github.com/tzoracle/oracled/internal/storage/ticketindex"
)

const maxOpBodySize = 64 * 1024

// Server wires the engine, storage and dispatcher behind HTTP handlers.
type Server struct {
	engine     *op.Engine
	store      *statestore.Store
	index      *ticketindex.Index
	dispatcher dispatch.Dispatcher
	hub        *Hub
	log        zerolog.Logger

	http *http.Server
}

func NewServer(addr string, engine *op.Engine, store *statestore.Store,
	index *ticketindex.Index, dispatcher dispatch.Dispatcher,
	hub *Hub, logger zerolog.Logger) *Server {

	s := &Server{
		engine:     engine,
		store:      store,
		index:      index,
		dispatcher: dispatcher,
		hub:        hub,
		log:        logger.With().Str("component", "rpc").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /op", s.handleSubmit)
	mux.HandleFunc("GET /storage", s.handleStorage)
	mux.HandleFunc("GET /counter", s.handleCounter)
	mux.HandleFunc("GET /requests/{id}", s.handleRequest)
	mux.HandleFunc("GET /requests", s.handleRequestList)
	mux.HandleFunc("GET /prices/{pair}", s.handlePrice)
	mux.HandleFunc("GET /log/{seq}", s.handleLog)
	mux.Handle("GET /ws", hub)

	s.http = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the route table, so tests can serve it in process.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.http.Addr).Msg("rpc listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and closes the event stream.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

// submitResponse is the reply to POST /op.
type submitResponse struct {
	Result  string          `json:"result"`
	Code    int             `json:"code"`
	Applied bool            `json:"applied"`
	Effects []effect.Effect `json:"effects,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOpBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}

	o, err := op.FromJSON(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.engine.Apply(o)
	s.log.Info().
		Str("kind", string(o.Kind())).
		Str("caller", o.Caller()).
		Str("result", res.Result.String()).
		Msg("operation")

	if res.Result.IsSuccess() {
		s.afterCommit(r.Context(), o, res)
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Result:  res.Result.String(),
		Code:    int(res.Result),
		Applied: res.Result.IsSuccess(),
		Effects: res.Effects,
	})
}

// afterCommit handles the non-atomic follow-ups of a committed operation:
// ticket index rows, the event stream and effect delivery. Failures here are
// logged, never surfaced; the operation has already committed. The ticket id
// and sequence number come from the ApplyResult, captured inside the apply
// lock; reading them off the latest state would attribute them to whichever
// operation committed last.
func (s *Server) afterCommit(ctx context.Context, o op.Operation, res op.ApplyResult) {
	if res.TicketID != nil {
		id := *res.TicketID
		if tk, ok := s.engine.State().Requests[id]; ok {
			if err := s.index.Upsert(ctx, id, tk); err != nil {
				s.log.Error().Err(err).Uint64("id", id).Msg("ticket index upsert")
			}
		}
	}

	payload, err := json.Marshal(res.Effects)
	if err != nil {
		s.log.Error().Err(err).Msg("marshal effects")
	}
	s.hub.Broadcast(Event{
		Type:    "op_applied",
		Seq:     res.Seq,
		Kind:    string(o.Kind()),
		Result:  res.Result.String(),
		Payload: payload,
	})

	if len(res.Effects) > 0 {
		go func(effects []effect.Effect) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.dispatcher.Dispatch(ctx, effects); err != nil {
				s.log.Error().Err(err).Msg("effect dispatch")
			}
		}(res.Effects)
	}
}

func (s *Server) handleStorage(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.State())
}

func (s *Server) handleCounter(w http.ResponseWriter, _ *http.Request) {
	st := s.engine.State()
	writeJSON(w, http.StatusOK, map[string]uint64{
		"counter":       st.Counter,
		"request_price": st.RequestPrice,
	})
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	st := s.engine.State()
	tk, ok := st.Requests[id]
	if !ok {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	writeJSON(w, http.StatusOK, tk)
}

func (s *Server) handleRequestList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 1000 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	rows, err := s.index.ListByStatus(r.Context(), status, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("ticket index query")
		writeError(w, http.StatusInternalServerError, "index query failed")
		return
	}
	if rows == nil {
		rows = []*ticketindex.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	pair := r.PathValue("pair")
	st := s.engine.State()

	if !st.SupportsPair(pair) {
		writeError(w, http.StatusNotFound, op.PairNotSupported.String())
		return
	}
	writeJSON(w, http.StatusOK, st.Price(pair))
}

func (s *Server) handleLog(w http.ResponseWriter, r *http.Request) {
	seq, err := strconv.ParseUint(r.PathValue("seq"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sequence")
		return
	}

	entry, ok, err := s.store.Log(seq)
	if err != nil {
		s.log.Error().Err(err).Uint64("seq", seq).Msg("op log read")
		writeError(w, http.StatusInternalServerError, "log read failed")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "log entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
