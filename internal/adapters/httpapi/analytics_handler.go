package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// maxAnalyticsDays caps the days query parameter.
const maxAnalyticsDays = 365

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	tenantID := queryTenant(r)
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, errTenantRequired)
		return
	}

	window := s.analyticsWindow
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 || days > maxAnalyticsDays {
			writeError(w, http.StatusBadRequest, fmt.Errorf("days must be between 1 and %d", maxAnalyticsDays))
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	report, err := s.services.Analytics.Summarize(r.Context(), tenantID, window)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"analytics":   report.Summary,
		"windowStart": report.WindowStart,
		"windowEnd":   report.WindowEnd,
	})
}
