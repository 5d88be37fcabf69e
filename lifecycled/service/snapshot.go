package service

import (
	"context"
	"time"
)

// AppSummary is one entry of GetLoadedApps' JSON array result, field
// names matching spec §6 exactly (camelCase as the collaborator-facing
// wire format, distinct from this package's own Go naming elsewhere).
type AppSummary struct {
	AppInstanceID                  string `json:"appInstanceID"`
	AppID                          string `json:"appId"`
	TimeOfLastLifecycleStateChange string `json:"timeOfLastLifecycleStateChange"`
	CurrentLifecycleState          int    `json:"currentLifecycleState"`
	ActiveSessionID                string `json:"activeSessionId"`
	TargetLifecycleState           int    `json:"targetLifecycleState"`
	MostRecentIntent               string `json:"mostRecentIntent"`
	RuntimeStats                   string `json:"runtimeStats,omitempty"`
}

// timeFormat matches spec §6's MM/DD/YY HH:MM:SS.nnnnnnnnn requirement.
const timeFormat = "01/02/06 15:04:05.000000000"

// GetLoadedApps returns a snapshot of every loaded app. When verbose is
// true, each entry with an instance id has RuntimeStats set to the
// runtime collaborator's GetInfo string; a GetInfo error leaves it empty
// (spec §6).
func (s *Service) GetLoadedApps(ctx context.Context, verbose bool) []AppSummary {
	snapshots := s.registry.List()
	out := make([]AppSummary, 0, len(snapshots))
	for _, snap := range snapshots {
		summary := AppSummary{
			AppInstanceID:                   string(snap.AppInstanceId),
			AppID:                           string(snap.AppId),
			TimeOfLastLifecycleStateChange:  formatStateChangeTime(snap.LastStateChangeAt),
			CurrentLifecycleState:           int(snap.CurrentState),
			ActiveSessionID:                 string(snap.AppInstanceId),
			TargetLifecycleState:            int(snap.TargetState),
			MostRecentIntent:                snap.MostRecentIntent,
		}
		if verbose && snap.AppInstanceId != "" {
			if info, err := s.runtimeAdapter.GetInfo(ctx, snap.AppInstanceId); err == nil {
				summary.RuntimeStats = info
			}
		}
		out = append(out, summary)
	}
	return out
}

func formatStateChangeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}
