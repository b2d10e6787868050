package payload

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkCountersFieldShapes(t *testing.T) {
	tests := []struct {
		name    string
		metrics map[string]any
		rx, tx  float64
	}{
		{
			name:    "nested network object",
			metrics: map[string]any{"network": map[string]any{"rx_bytes": 100.0, "tx_bytes": 200.0}},
			rx:      100, tx: 200,
		},
		{
			name:    "net_ prefixed flat fields",
			metrics: map[string]any{"net_rx_bytes": 11.0, "net_tx_bytes": 22.0},
			rx:      11, tx: 22,
		},
		{
			name:    "bare flat fields",
			metrics: map[string]any{"rx_bytes": 5.0, "tx_bytes": 6.0},
			rx:      5, tx: 6,
		},
		{
			name: "nested wins over flat",
			metrics: map[string]any{
				"network":      map[string]any{"rx_bytes": 1.0, "tx_bytes": 2.0},
				"net_rx_bytes": 9.0,
				"tx_bytes":     9.0,
			},
			rx: 1, tx: 2,
		},
		{
			name:    "explicit zero is not skipped",
			metrics: map[string]any{"net_rx_bytes": 0.0, "rx_bytes": 42.0},
			rx:      0, tx: 0,
		},
		{
			name:    "nothing present",
			metrics: map[string]any{"cpu": 3.0},
			rx:      0, tx: 0,
		},
		{
			name:    "nil metrics",
			metrics: nil,
			rx:      0, tx: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rx, tx := NetworkCounters(tt.metrics)
			assert.Equal(t, tt.rx, rx)
			assert.Equal(t, tt.tx, tx)
		})
	}
}

func TestExtract(t *testing.T) {
	var metrics map[string]any
	err := json.Unmarshal([]byte(`{"cpu": 12.5, "memory": "40", "disk": 70, "load": 0.75, "web_time": 120, "rx_bytes": 1000}`), &metrics)
	assert.NoError(t, err)

	snap := Extract(metrics)
	assert.Equal(t, Snapshot{CPU: 12.5, Memory: 40, Disk: 70, Load: 0.75, NetRx: 1000, WebTime: 120}, snap)
}

func TestTraffic(t *testing.T) {
	used, total := Traffic(map[string]any{"traffic": map[string]any{"used": 25.0, "total": 100.0}})
	assert.Equal(t, 25.0, used)
	assert.Equal(t, 100.0, total)

	used, total = Traffic(map[string]any{})
	assert.Zero(t, used)
	assert.Zero(t, total)
}

func TestToFloat(t *testing.T) {
	f, ok := ToFloat(json.Number("3.5"))
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)

	_, ok = ToFloat("not a number")
	assert.False(t, ok)

	_, ok = ToFloat(map[string]any{})
	assert.False(t, ok)

	f, ok = ToFloat(" 35 ")
	assert.True(t, ok)
	assert.Equal(t, 35.0, f)

	for _, v := range []any{nil, "NaN", "+Inf"} {
		f, ok = ToFloat(v)
		assert.False(t, ok, "%v", v)
		assert.Zero(t, f)
	}
}
