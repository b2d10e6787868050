package types

type RegisterRequest struct {
	Name  string `json:"name"`
	IP    string `json:"ip"`
	Token string `json:"token"`
}

// ReportRequest is the body of both the heartbeat and the upload endpoints.
// ResponseTime may arrive as a number or a numeric string; services are kept
// as sent.
type ReportRequest struct {
	IP           string         `json:"ip"`
	Token        string         `json:"token"`
	ResponseTime any            `json:"responseTime"`
	Metrics      map[string]any `json:"metrics"`
	Services     map[string]any `json:"services"`
	Name         string         `json:"name"`
}

type Server struct {
	Name         string         `json:"name"`
	IP           string         `json:"ip"`
	LastSeen     int64          `json:"lastSeen"`
	Status       Status         `json:"status"`
	ResponseTime float64        `json:"responseTime"`
	Metrics      map[string]any `json:"metrics"`
	Services     map[string]any `json:"services"`
}

type Stats struct {
	Total       int   `json:"total"`
	Online      int   `json:"online"`
	Warning     int   `json:"warning"`
	Offline     int   `json:"offline"`
	AvgResponse int64 `json:"avgResponse"`
	AvgCPU      int64 `json:"avgCpu"`
	AvgMemory   int64 `json:"avgMemory"`
	AvgDisk     int64 `json:"avgDisk"`
	AvgTraffic  int64 `json:"avgTraffic"`
}

type ServerList struct {
	Servers []Server `json:"servers"`
	Stats   Stats    `json:"stats"`
}

type HistoryPoint struct {
	CPU     float64 `json:"cpu"`
	Memory  float64 `json:"memory"`
	Disk    float64 `json:"disk"`
	Load    float64 `json:"load"`
	NetRx   float64 `json:"net_rx"`
	NetTx   float64 `json:"net_tx"`
	WebTime float64 `json:"web_time"`
	Time    int64   `json:"time"`
}

// Registration is what the registry keeps for each host.
type Registration struct {
	Name         string `json:"name"`
	IP           string `json:"ip"`
	Token        string `json:"token"`
	RegisteredAt int64  `json:"registeredAt"`
}
