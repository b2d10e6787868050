// Package payload reads scalar fields out of the free-form metrics object agents report.
package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Snapshot is the fixed set of scalars copied into a history row.
type Snapshot struct {
	CPU     float64
	Memory  float64
	Disk    float64
	Load    float64
	NetRx   float64
	NetTx   float64
	WebTime float64
}

func Extract(metrics map[string]any) Snapshot {
	rx, tx := NetworkCounters(metrics)

	return Snapshot{
		CPU:     Number(metrics, "cpu"),
		Memory:  Number(metrics, "memory"),
		Disk:    Number(metrics, "disk"),
		Load:    Number(metrics, "load"),
		NetRx:   rx,
		NetTx:   tx,
		WebTime: Number(metrics, "web_time"),
	}
}

// NetworkCounters returns receive/transmit byte counters. Agents send them either
// nested as network.rx_bytes / network.tx_bytes, or flat as net_rx_bytes / rx_bytes
// (and the tx equivalents). The first field present wins; absent means 0.
func NetworkCounters(metrics map[string]any) (rx, tx float64) {
	network, _ := metrics["network"].(map[string]any)

	rx = firstPresent(
		lookup(network, "rx_bytes"),
		lookup(metrics, "net_rx_bytes"),
		lookup(metrics, "rx_bytes"),
	)
	tx = firstPresent(
		lookup(network, "tx_bytes"),
		lookup(metrics, "net_tx_bytes"),
		lookup(metrics, "tx_bytes"),
	)

	return rx, tx
}

// Traffic returns the traffic quota usage reported under metrics.traffic.
func Traffic(metrics map[string]any) (used, total float64) {
	traffic, _ := metrics["traffic"].(map[string]any)

	return Number(traffic, "used"), Number(traffic, "total")
}

// Number returns metrics[key] as a float64, or 0 when it is missing or not numeric.
func Number(metrics map[string]any, key string) float64 {
	v, _ := ToFloat(lookup(metrics, key))
	return v
}

func lookup(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

func firstPresent(values ...any) float64 {
	for _, v := range values {
		if v == nil {
			continue
		}
		f, _ := ToFloat(v)
		return f
	}
	return 0
}

// ToFloat converts JSON-decoded numbers and numeric strings. "NaN" and
// "Inf" strings are rejected since they cannot be stored or re-encoded.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
