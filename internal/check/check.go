// Package check turns a cluster-management API state into a monitoring verdict.
package check

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/opsgrid/check-cm/internal/cm"
	"github.com/opsgrid/check-cm/internal/config"
	"github.com/opsgrid/check-cm/internal/plugin"
)

// API is the part of the management API the check consumes.
type API interface {
	ServiceState(ctx context.Context, cluster, service string) (string, error)
	RoleState(ctx context.Context, cluster, service, role string) (string, string, error)
}

// Classify maps an API state to a monitoring status. Matching is exact and
// case-sensitive; the second return reports whether the state was recognized.
func Classify(state string) (plugin.Status, bool) {
	switch state {
	case "STARTED":
		return plugin.StatusOK, true
	case "STARTING", "STOPPING":
		return plugin.StatusWarning, true
	case "STOPPED":
		return plugin.StatusCritical, true
	case "UNKNOWN", "HISTORY_NOT_AVAILABLE":
		return plugin.StatusUnknown, true
	default:
		return plugin.StatusUnknown, false
	}
}

// Message renders the human-readable part of the plugin output.
func Message(target config.Target, roleLabel, state string) string {
	if roleLabel == "" {
		return fmt.Sprintf("cluster '%s' service '%s' state=%s", target.Cluster, target.Service, state)
	}
	return fmt.Sprintf("cluster '%s' service '%s' role '%s' state=%s", target.Cluster, target.Service, roleLabel, state)
}

// Run fetches the state of the configured target and classifies it.
func Run(ctx context.Context, api API, settings *config.Settings) plugin.Result {
	target := settings.Target

	start := time.Now()
	var (
		state    string
		roleType string
		err      error
	)
	if target.Role == "" {
		state, err = api.ServiceState(ctx, target.Cluster, target.Service)
	} else {
		state, roleType, err = api.RoleState(ctx, target.Cluster, target.Service, target.Role)
	}
	elapsed := time.Since(start)

	if err != nil {
		return ErrorResult(err, settings.Timeout)
	}

	roleLabel := ""
	if target.Role != "" {
		// Role instance names are machine-generated and noisy, so the
		// default output shows the role type instead.
		roleLabel = roleType
		if settings.Verbosity > 0 {
			roleLabel = target.Role
		}
	}

	status, known := Classify(state)
	message := Message(target, roleLabel, state)
	if !known {
		message += " (unrecognized state, consider reporting this upstream)"
	}

	return plugin.Result{
		Status:  status,
		Message: message,
		Perf:    []plugin.PerfDatum{queryTime(elapsed)},
	}
}

// ErrorResult maps a fetch or API failure to a Result. Timeouts and
// malformed responses are UNKNOWN; a reachable API that answers badly
// is CRITICAL.
func ErrorResult(err error, timeout time.Duration) plugin.Result {
	var (
		connErr  *cm.ConnectError
		apiErr   *cm.APIError
		fieldErr *cm.FieldError
	)
	switch {
	case errors.As(err, &connErr):
		if connErr.Timeout {
			return plugin.Result{
				Status:  plugin.StatusUnknown,
				Message: fmt.Sprintf("API request timed out after %s", timeout),
			}
		}
		return plugin.Result{Status: plugin.StatusCritical, Message: err.Error()}
	case errors.As(err, &apiErr):
		return plugin.Result{Status: plugin.StatusCritical, Message: err.Error()}
	case errors.As(err, &fieldErr):
		return plugin.Result{Status: plugin.StatusUnknown, Message: err.Error()}
	default:
		return plugin.Result{Status: plugin.StatusUnknown, Message: err.Error()}
	}
}

func queryTime(elapsed time.Duration) plugin.PerfDatum {
	secs := math.Round(elapsed.Seconds()*1e4) / 1e4
	return plugin.PerfDatum{Label: "query_time", Value: secs, UOM: "s"}
}
