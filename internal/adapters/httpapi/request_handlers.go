package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/bellhop/internal/ports/primary"
)

type requestView struct {
	ID                string     `json:"id"`
	TenantID          string     `json:"tenantId"`
	Channel           string     `json:"channel"`
	AssignedHandlerID string     `json:"assignedHandlerId,omitempty"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"createdAt"`
	AcknowledgedBy    string     `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt    *time.Time `json:"acknowledgedAt,omitempty"`
	ClosedAt          *time.Time `json:"closedAt,omitempty"`
	StagesFired       []string   `json:"stagesFired"`
}

type transitionView struct {
	Stage          string    `json:"stage"`
	FiredAt        time.Time `json:"firedAt"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func toRequestView(r *primary.ServiceRequest) requestView {
	stages := r.StagesFired
	if stages == nil {
		stages = []string{}
	}
	return requestView{
		ID:                r.ID,
		TenantID:          r.TenantID,
		Channel:           r.Channel,
		AssignedHandlerID: r.AssignedHandlerID,
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
		AcknowledgedBy:    r.AcknowledgedBy,
		AcknowledgedAt:    optionalTime(r.AcknowledgedAt),
		ClosedAt:          optionalTime(r.ClosedAt),
		StagesFired:       stages,
	}
}

type openRequestBody struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenantId"`
	Channel   string `json:"channel"`
	HandlerID string `json:"handlerId"`
}

func (s *Server) openRequest(w http.ResponseWriter, r *http.Request) {
	var body openRequestBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	if body.TenantID == "" {
		writeError(w, http.StatusBadRequest, errTenantRequired)
		return
	}

	req, err := s.services.Requests.OpenRequest(r.Context(), primary.OpenRequestRequest{
		ID:        body.ID,
		TenantID:  body.TenantID,
		Channel:   body.Channel,
		HandlerID: body.HandlerID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "request": toRequestView(req)})
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	tenantID := queryTenant(r)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, errTenantRequired)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	reqs, err := s.services.Requests.ListRequests(r.Context(), primary.RequestFilters{
		TenantID: tenantID,
		Status:   r.URL.Query().Get("status"),
		Limit:    limit,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	views := make([]requestView, len(reqs))
	for i, req := range reqs {
		views[i] = toRequestView(req)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "requests": views})
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	detail, err := s.services.Requests.GetRequest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	transitions := make([]transitionView, len(detail.Transitions))
	for i, tr := range detail.Transitions {
		transitions[i] = transitionView{Stage: tr.Stage, FiredAt: tr.FiredAt, ElapsedSeconds: tr.ElapsedSeconds}
	}
	body := map[string]any{
		"success":     true,
		"request":     toRequestView(detail.Request),
		"transitions": transitions,
	}
	if detail.NextStage != "" {
		body["nextStage"] = detail.NextStage
		body["nextDueAt"] = detail.NextDueAt
	}
	writeJSON(w, http.StatusOK, body)
}

type acknowledgeBody struct {
	HandlerID string `json:"handlerId"`
}

func (s *Server) acknowledgeRequest(w http.ResponseWriter, r *http.Request) {
	var body acknowledgeBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid body: %w", err))
		return
	}
	req, err := s.services.Requests.Acknowledge(r.Context(), mux.Vars(r)["id"], body.HandlerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": toRequestView(req)})
}

func (s *Server) closeRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.services.Requests.Close(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "request": toRequestView(req)})
}
