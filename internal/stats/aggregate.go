// Package stats computes fleet-wide summary figures over the current server rows.
package stats

import (
	"math"

	"github.com/monocle-dev/fleetwatch/internal/payload"
	"github.com/monocle-dev/fleetwatch/internal/types"
)

// Summarize scans every server once. Servers must already carry their derived Status.
//
// Offline is reported as Total-Online, so hosts in the warning band are counted there
// too; Warning carries them separately. CPU, memory and disk averages run over all
// hosts with a missing metric counted as 0.
func Summarize(servers []types.Server) types.Stats {
	var (
		s             types.Stats
		responseSum   float64
		responseCount int
		cpuSum        float64
		memorySum     float64
		diskSum       float64
		trafficSum    float64
		trafficCount  int
	)

	for _, server := range servers {
		s.Total++

		switch server.Status {
		case types.StatusOnline:
			s.Online++
		case types.StatusWarning:
			s.Warning++
		}

		if server.ResponseTime > 0 {
			responseSum += server.ResponseTime
			responseCount++
		}

		cpuSum += payload.Number(server.Metrics, "cpu")
		memorySum += payload.Number(server.Metrics, "memory")
		diskSum += payload.Number(server.Metrics, "disk")

		if used, total := payload.Traffic(server.Metrics); total > 0 {
			trafficSum += round(used / total * 100)
			trafficCount++
		}
	}

	s.Offline = s.Total - s.Online
	s.AvgResponse = mean(responseSum, responseCount)
	s.AvgCPU = mean(cpuSum, s.Total)
	s.AvgMemory = mean(memorySum, s.Total)
	s.AvgDisk = mean(diskSum, s.Total)
	s.AvgTraffic = mean(trafficSum, trafficCount)

	return s
}

func mean(sum float64, n int) int64 {
	if n == 0 {
		return 0
	}
	return int64(round(sum / float64(n)))
}

// round is half away from zero, used for every average.
func round(v float64) float64 {
	return math.Round(v)
}
