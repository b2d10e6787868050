// Package status derives host liveness from the time since its last report.
package status

import (
	"time"

	"github.com/monocle-dev/fleetwatch/internal/types"
)

const (
	DefaultWarningThreshold = 5 * time.Minute
	DefaultOfflineThreshold = 10 * time.Minute
)

// Classifier maps a last-seen time to online, warning or offline. It holds no state.
type Classifier struct {
	warning time.Duration
	offline time.Duration
}

// NewClassifier builds a classifier. Non-positive thresholds fall back to the
// defaults, and an offline threshold below the warning threshold is raised to it.
func NewClassifier(warning, offline time.Duration) Classifier {
	if warning <= 0 {
		warning = DefaultWarningThreshold
	}

	if offline <= 0 {
		offline = DefaultOfflineThreshold
	}

	if offline < warning {
		offline = warning
	}

	return Classifier{warning: warning, offline: offline}
}

func (c Classifier) WarningThreshold() time.Duration {
	return c.warning
}

func (c Classifier) OfflineThreshold() time.Duration {
	return c.offline
}

// Classify returns the liveness of a host last seen at lastSeen, as observed at now.
// A zero lastSeen means the host never reported and is offline.
func (c Classifier) Classify(lastSeen, now time.Time) types.Status {
	if lastSeen.IsZero() {
		return types.StatusOffline
	}

	gap := now.Sub(lastSeen)

	switch {
	case gap <= c.warning:
		return types.StatusOnline
	case gap <= c.offline:
		return types.StatusWarning
	default:
		return types.StatusOffline
	}
}

// ClassifyMillis is Classify for unix-millisecond timestamps; 0 means never seen.
func (c Classifier) ClassifyMillis(lastSeenMillis int64, now time.Time) types.Status {
	if lastSeenMillis <= 0 {
		return types.StatusOffline
	}

	return c.Classify(time.UnixMilli(lastSeenMillis), now)
}
