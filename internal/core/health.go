package core

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// healthCheckTimeout bounds the whole health check.
const healthCheckTimeout = 2 * time.Second

// HealthChecker checks one dependency.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type componentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]componentStatus `json:"components,omitempty"`
}

// HandleHealth runs every checker concurrently under healthCheckTimeout. It
// answers 200 when all checkers pass and 503 when any fails, panics or does not
// finish in time.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := healthResponse{Status: "healthy"}
	if s.Config != nil {
		resp.Version = s.Config.Build.Version
	}
	if len(s.HealthCheckers) == 0 {
		JSON(w, r, http.StatusOK, resp)
		return
	}

	type result struct {
		index int
		err   error
	}
	results := make(chan result, len(s.HealthCheckers))
	for i, checker := range s.HealthCheckers {
		go func() {
			results <- result{index: i, err: runChecker(ctx, checker)}
		}()
	}

	errs := make([]error, len(s.HealthCheckers))
	done := make([]bool, len(s.HealthCheckers))
collect:
	for range s.HealthCheckers {
		select {
		case res := <-results:
			errs[res.index], done[res.index] = res.err, true
		case <-ctx.Done():
			break collect
		}
	}

	resp.Components = make(map[string]componentStatus, len(s.HealthCheckers))
	for i, checker := range s.HealthCheckers {
		switch {
		case !done[i]:
			resp.Status = "unhealthy"
			resp.Components[checker.Name()] = componentStatus{Status: "unhealthy", Message: "health check timed out"}
		case errs[i] != nil:
			resp.Status = "unhealthy"
			resp.Components[checker.Name()] = componentStatus{Status: "unhealthy", Message: errs[i].Error()}
		default:
			resp.Components[checker.Name()] = componentStatus{Status: "healthy"}
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	JSON(w, r, status, resp)
}

func runChecker(ctx context.Context, p HealthChecker) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			err = fmt.Errorf("health check panicked: %v", rvr)
		}
	}()
	return p.Check(ctx)
}
