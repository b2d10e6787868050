// Package fleet ingests agent reports and serves the fleet views built from them.
package fleet

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/monocle-dev/fleetwatch/internal/logger"
	"github.com/monocle-dev/fleetwatch/internal/models"
	"github.com/monocle-dev/fleetwatch/internal/payload"
	"github.com/monocle-dev/fleetwatch/internal/registry"
	"github.com/monocle-dev/fleetwatch/internal/stats"
	"github.com/monocle-dev/fleetwatch/internal/status"
	"github.com/monocle-dev/fleetwatch/internal/types"
	"gorm.io/datatypes"
)

type Registry interface {
	Register(ctx context.Context, ip, name, token string) (string, error)
	Lookup(ctx context.Context, ip string) (types.Registration, error)
	Delete(ctx context.Context, ip string) error
}

type Store interface {
	RecordReport(ctx context.Context, history *models.HistoryRecord, latest *models.LatestStatus) error
	Latest(ctx context.Context) ([]models.LatestStatus, error)
	History(ctx context.Context, ip string) ([]models.HistoryRecord, error)
	DeleteHost(ctx context.Context, ip string) error
}

// Notifier is told about state changes after they are stored. It must not block.
type Notifier interface {
	Notify(event types.Event)
}

type Service struct {
	registry   Registry
	store      Store
	classifier status.Classifier
	notifier   Notifier
	now        func() time.Time
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(reg Registry, store Store, classifier status.Classifier, opts ...Option) *Service {
	s := &Service{
		registry:   reg,
		store:      store,
		classifier: classifier,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register issues (or stores the supplied) token for a host.
func (s *Service) Register(ctx context.Context, req types.RegisterRequest) (string, error) {
	req.IP = normalizeIP(req.IP)

	if req.Name == "" || req.IP == "" {
		return "", fmt.Errorf("%w: name and ip are required", ErrBadRequest)
	}

	token, err := s.registry.Register(ctx, req.IP, req.Name, req.Token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStore, err)
	}

	logger.Log.Info("server registered", "ip", req.IP, "name", req.Name)

	return token, nil
}

// Ingest validates a heartbeat against the registry and records it. It returns the
// server timestamp (unix millis) stamped on the stored rows.
func (s *Service) Ingest(ctx context.Context, req types.ReportRequest) (int64, error) {
	req.IP = normalizeIP(req.IP)

	if req.IP == "" || req.Token == "" {
		return 0, fmt.Errorf("%w: ip and token are required", ErrBadRequest)
	}

	reg, err := s.registry.Lookup(ctx, req.IP)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrNotRegistered, req.IP)
		}
		return 0, fmt.Errorf("%w: %w", ErrStore, err)
	}

	if subtle.ConstantTimeCompare([]byte(reg.Token), []byte(req.Token)) != 1 {
		return 0, ErrUnauthorized
	}

	metrics := req.Metrics
	if metrics == nil {
		metrics = map[string]any{}
	}

	services := req.Services
	if services == nil {
		services = map[string]any{}
	}

	metricsJSON, err := json.Marshal(metrics)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	servicesJSON, err := json.Marshal(services)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	// a missing or non-numeric response time counts as not measured
	responseTime, _ := payload.ToFloat(req.ResponseTime)

	now := s.now().UnixMilli()
	snap := payload.Extract(metrics)

	history := &models.HistoryRecord{
		IP:      req.IP,
		CPU:     snap.CPU,
		Memory:  snap.Memory,
		Disk:    snap.Disk,
		Load:    snap.Load,
		NetRx:   snap.NetRx,
		NetTx:   snap.NetTx,
		WebTime: snap.WebTime,
		Time:    now,
	}

	latest := &models.LatestStatus{
		IP:           req.IP,
		Name:         displayName(reg.Name, req.Name),
		LastSeen:     now,
		ResponseTime: responseTime,
		Metrics:      datatypes.JSON(metricsJSON),
		Services:     datatypes.JSON(servicesJSON),
	}

	if err := s.store.RecordReport(ctx, history, latest); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrStore, err)
	}

	s.notify(types.EventReport, req.IP, now)

	return now, nil
}

// ListServers classifies every current row against the clock and summarises the fleet.
func (s *Service) ListServers(ctx context.Context) (types.ServerList, error) {
	rows, err := s.store.Latest(ctx)
	if err != nil {
		return types.ServerList{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	now := s.now()
	servers := make([]types.Server, 0, len(rows))

	for _, row := range rows {
		servers = append(servers, types.Server{
			Name:         row.Name,
			IP:           row.IP,
			LastSeen:     row.LastSeen,
			Status:       s.classifier.ClassifyMillis(row.LastSeen, now),
			ResponseTime: row.ResponseTime,
			Metrics:      decodeMetrics(row.IP, row.Metrics),
			Services:     decodeServices(row.IP, row.Services),
		})
	}

	return types.ServerList{
		Servers: servers,
		Stats:   stats.Summarize(servers),
	}, nil
}

// GetHistory returns the host's history oldest first; unknown hosts yield an empty slice.
func (s *Service) GetHistory(ctx context.Context, ip string) ([]types.HistoryPoint, error) {
	ip = normalizeIP(ip)

	if ip == "" {
		return nil, fmt.Errorf("%w: ip is required", ErrBadRequest)
	}

	rows, err := s.store.History(ctx, ip)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStore, err)
	}

	points := make([]types.HistoryPoint, 0, len(rows))

	for _, row := range rows {
		points = append(points, types.HistoryPoint{
			CPU:     row.CPU,
			Memory:  row.Memory,
			Disk:    row.Disk,
			Load:    row.Load,
			NetRx:   row.NetRx,
			NetTx:   row.NetTx,
			WebTime: row.WebTime,
			Time:    row.Time,
		})
	}

	return points, nil
}

// DeleteHost drops the host's latest row, its history and its registration.
// It is idempotent.
func (s *Service) DeleteHost(ctx context.Context, ip string) error {
	ip = normalizeIP(ip)

	if ip == "" {
		return fmt.Errorf("%w: ip is required", ErrBadRequest)
	}

	if err := s.store.DeleteHost(ctx, ip); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	if err := s.registry.Delete(ctx, ip); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}

	logger.Log.Info("server deleted", "ip", ip)
	s.notify(types.EventDeleted, ip, s.now().UnixMilli())

	return nil
}

func (s *Service) notify(eventType, ip string, at int64) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(types.Event{Type: eventType, IP: ip, Timestamp: at})
}

// normalizeIP makes every entry point agree on the host key.
func normalizeIP(ip string) string {
	return strings.TrimSpace(ip)
}

func displayName(registered, reported string) string {
	if registered != "" {
		return registered
	}
	return reported
}

func decodeMetrics(ip string, raw datatypes.JSON) map[string]any {
	metrics := map[string]any{}

	if len(raw) == 0 {
		return metrics
	}

	if err := json.Unmarshal(raw, &metrics); err != nil {
		logger.Log.Warn("unreadable metrics blob", "ip", ip, "err", err)
		return map[string]any{}
	}

	if metrics == nil {
		return map[string]any{}
	}

	return metrics
}

func decodeServices(ip string, raw datatypes.JSON) map[string]any {
	services := map[string]any{}

	if len(raw) == 0 {
		return services
	}

	if err := json.Unmarshal(raw, &services); err != nil {
		logger.Log.Warn("unreadable services blob", "ip", ip, "err", err)
		return map[string]any{}
	}

	if services == nil {
		return map[string]any{}
	}

	return services
}
