// Package analytics rolls stage transitions up into response-time statistics.
// This is part of the Functional Core - no I/O, only pure functions.
package analytics

import (
	"math"
	"time"

	"github.com/example/bellhop/internal/core/policy"
	"github.com/example/bellhop/internal/core/request"
)

// Response-time thresholds reported by Summarize.
const (
	TwoMinutes  = 120
	FiveMinutes = 300
)

// Summary is the rolling response-time report for a window.
type Summary struct {
	TotalRequests     int `json:"totalRequests"`
	AvgResponseTime   int `json:"avgResponseTime"` // seconds
	Within2MinPercent int `json:"within2minPercent"`
	Within5MinPercent int `json:"within5minPercent"`
}

// Summarize aggregates transitions whose FiredAt falls in [windowStart, windowEnd].
//
// TotalRequests counts distinct requests with any transition in the window.
// AvgResponseTime is the mean elapsed time of acknowledgment transitions.
// The percentages are over all in-window requests, so a request never
// acknowledged counts as neither within two nor within five minutes.
// An empty window yields a zero Summary.
func Summarize(transitions []request.Transition, windowStart, windowEnd time.Time) Summary {
	requests := map[string]struct{}{}
	acks := map[string]int{}

	for _, tr := range transitions {
		if tr.FiredAt.Before(windowStart) || tr.FiredAt.After(windowEnd) {
			continue
		}
		requests[tr.RequestID] = struct{}{}
		if tr.Stage != policy.StageAcknowledged {
			continue
		}
		if prev, seen := acks[tr.RequestID]; !seen || tr.ElapsedSeconds < prev {
			acks[tr.RequestID] = tr.ElapsedSeconds
		}
	}

	total := len(requests)
	if total == 0 {
		return Summary{}
	}

	var sum, within2, within5 int
	for _, elapsed := range acks {
		sum += elapsed
		if elapsed <= TwoMinutes {
			within2++
		}
		if elapsed <= FiveMinutes {
			within5++
		}
	}

	s := Summary{
		TotalRequests:     total,
		Within2MinPercent: percent(within2, total),
		Within5MinPercent: percent(within5, total),
	}
	if len(acks) > 0 {
		s.AvgResponseTime = int(math.Round(float64(sum) / float64(len(acks))))
	}
	return s
}

func percent(n, total int) int {
	return int(math.Round(100 * float64(n) / float64(total)))
}
