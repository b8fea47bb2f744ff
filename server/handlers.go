package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/callmesh/agent"
	"github.com/hupe1980/callmesh/metrics"
	"github.com/hupe1980/callmesh/session"
	"github.com/hupe1980/callmesh/swaig"
)

// documentRequest is the (optional) body the platform posts when fetching a
// document for a new call.
type documentRequest struct {
	Call struct {
		CallID string `json:"call_id"`
		From   string `json:"from"`
		To     string `json:"to"`
	} `json:"call"`
}

// handleDocument renders the agent's SWML document. GET requests render with
// an empty call (useful for inspection tooling); POST requests carry call
// metadata and seed the call store.
func (s *Server) handleDocument(a *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var docReq documentRequest
		if r.Method == http.MethodPost && r.Body != nil {
			// Body is optional; decode errors fall back to an empty request.
			_ = json.NewDecoder(r.Body).Decode(&docReq)
		}

		callID := docReq.Call.CallID
		globalData := a.InitialGlobalData()

		if callID != "" {
			if call, err := s.store.Get(callID); err != nil {
				s.logger.Warn("server.store.get_failed", "call_id", callID, "error", err.Error())
			} else {
				// Seed only keys the call has not seen yet; a mid-call
				// re-fetch must not clobber evolved values with defaults.
				snapshot := call.Snapshot()
				seed := make(map[string]any, len(globalData))
				for k, v := range globalData {
					if _, exists := snapshot[k]; !exists {
						seed[k] = v
					}
				}
				if len(seed) > 0 {
					if err := s.store.ApplyDelta(callID, seed); err != nil {
						s.logger.Warn("server.store.seed_failed", "call_id", callID, "error", err.Error())
					}
				}
				for k, v := range snapshot {
					globalData[k] = v
				}
			}
		}

		doc, err := a.RenderDocument(r.Context(), &agent.RenderInfo{
			CallID:     callID,
			BaseURL:    s.baseURL(r, a.Route()),
			GlobalData: globalData,
		})
		if err != nil {
			metrics.IncDocumentRendered(a.Name(), "error")
			s.logDocumentRender(a.Name(), callID, 0, time.Since(start), err)
			writeError(w, http.StatusInternalServerError, "document render failed")
			return
		}

		raw, err := doc.Render()
		if err != nil {
			metrics.IncDocumentRendered(a.Name(), "error")
			s.logDocumentRender(a.Name(), callID, 0, time.Since(start), err)
			writeError(w, http.StatusInternalServerError, "document render failed")
			return
		}

		metrics.IncDocumentRendered(a.Name(), "ok")
		metrics.ObserveRequest("document", time.Since(start).Seconds())
		s.logDocumentRender(a.Name(), callID, len(raw), time.Since(start), nil)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	}
}

// handleSWAIG dispatches a function webhook to the agent. Failures still
// produce HTTP 200 with a speakable response body so the model can relay the
// problem to the caller instead of going silent.
func (s *Server) handleSWAIG(a *agent.Agent) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req swaig.FunctionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Function == "" {
			writeError(w, http.StatusBadRequest, "missing function name")
			return
		}
		if req.FunctionID == "" {
			req.FunctionID = uuid.NewString()
		}

		// Prefer the durable store's view of global data over the echoed copy.
		if req.CallID != "" {
			if call, err := s.store.Get(req.CallID); err == nil {
				snapshot := call.Snapshot()
				for k, v := range req.GlobalData {
					if _, exists := snapshot[k]; !exists {
						snapshot[k] = v
					}
				}
				req.GlobalData = snapshot
			}
		}

		result, err := a.HandleFunction(r.Context(), &req, s.baseURL(r, a.Route()))
		if err != nil {
			status := swaig.CodeExecutionError
			var fnErr *swaig.FunctionError
			if errors.As(err, &fnErr) {
				status = fnErr.Code
			}
			metrics.IncFunctionCall(a.Name(), req.Function, status)
			s.logFunctionCall(a.Name(), req, time.Since(start), err)
			s.recordEvent(req, "", err)

			writeJSON(w, http.StatusOK, swaig.NewErrorResult(
				"I'm sorry, I couldn't complete that action. Please try again."))
			return
		}

		if req.CallID != "" {
			if delta := result.GlobalDataDelta(); delta != nil {
				if err := s.store.ApplyDelta(req.CallID, delta); err != nil {
					s.logger.Warn("server.store.delta_failed", "call_id", req.CallID, "error", err.Error())
				}
			}
		}
		s.recordEvent(req, result.Response(), nil)

		metrics.IncFunctionCall(a.Name(), req.Function, "ok")
		metrics.ObserveRequest("swaig", time.Since(start).Seconds())
		s.logFunctionCall(a.Name(), req, time.Since(start), nil)

		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// logFunctionCall records a SWAIG dispatch outcome, using the call-correlated
// domain helper when the configured logger supports it.
func (s *Server) logFunctionCall(agentName string, req swaig.FunctionRequest, dur time.Duration, err error) {
	if s.domain != nil {
		s.domain.WithCall(req.CallID, agentName).
			WithContext("function_id", req.FunctionID).
			LogFunctionCall(req.Function, dur, err == nil, err)
		return
	}
	if err != nil {
		s.logger.Error("server.swaig.failed",
			"agent", agentName, "call_id", req.CallID, "function", req.Function, "error", err.Error())
		return
	}
	s.logger.Debug("server.swaig.completed",
		"agent", agentName, "call_id", req.CallID, "function", req.Function, "duration_ms", dur.Milliseconds())
}

// logDocumentRender records a document render outcome.
func (s *Server) logDocumentRender(agentName, callID string, bytes int, dur time.Duration, err error) {
	if s.domain != nil {
		s.domain.WithCall(callID, agentName).LogDocumentRender(bytes, dur, err)
		return
	}
	if err != nil {
		s.logger.Error("server.document.render_failed",
			"agent", agentName, "call_id", callID, "error", err.Error())
		return
	}
	s.logger.Debug("server.document.rendered",
		"agent", agentName, "call_id", callID, "bytes", bytes, "duration_ms", dur.Milliseconds())
}

// recordEvent appends the function invocation to the call history.
func (s *Server) recordEvent(req swaig.FunctionRequest, response string, err error) {
	if req.CallID == "" {
		return
	}
	ev := session.Event{
		ID:        req.FunctionID,
		Function:  req.Function,
		Arguments: req.Argument.Raw,
		Response:  response,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	if storeErr := s.store.AppendEvent(req.CallID, ev); storeErr != nil {
		s.logger.Warn("server.store.event_failed", "call_id", req.CallID, "error", storeErr.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
