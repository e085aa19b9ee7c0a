package registrysync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"residence-occupancy-backend/config"
	"residence-occupancy-backend/internal/model"
	"residence-occupancy-backend/internal/parse"
	"residence-occupancy-backend/internal/store"
)

// Invalidator drops cached registry reads after a sync.
type Invalidator interface {
	Invalidate()
}

// Report summarises one sync cycle.
type Report struct {
	Facilities int
	Buildings  int
	Spots      int
	Skipped    int
	Failed     []string
}

// Service mirrors the external registry into the local tables.
type Service struct {
	cfg         config.RegistryConfig
	workers     int
	store       store.Store
	invalidator Invalidator
	client      *http.Client
	log         *logrus.Logger
	now         func() time.Time
}

// NewService creates a sync service. invalidator may be nil.
func NewService(cfg *config.Config, s store.Store, invalidator Invalidator, log *logrus.Logger) *Service {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.Registry.HTTPProxy != "" {
		proxyURL, err := url.Parse(cfg.Registry.HTTPProxy)
		if err != nil {
			log.WithError(err).WithField("proxy", cfg.Registry.HTTPProxy).Warn("Invalid registry proxy URL, connecting directly")
		} else {
			transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
	}
	timeout := time.Duration(cfg.Registry.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Service{
		cfg:         cfg.Registry,
		workers:     cfg.WorkerPool.Size,
		store:       s,
		invalidator: invalidator,
		client:      &http.Client{Transport: transport, Timeout: timeout},
		log:         log,
		now:         time.Now,
	}
}

// Run syncs once immediately and then every configured interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.SyncEnabled {
		s.log.Info("Registry sync is disabled. Not starting.")
		return
	}
	s.log.WithField("interval", s.cfg.Interval).Info("Starting registry sync")

	s.SyncOnce(ctx)

	timer := time.NewTimer(s.cfg.Interval)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("Registry sync shutting down.")
			return
		case <-timer.C:
			s.SyncOnce(ctx)
			timer.Reset(s.cfg.Interval)
		}
	}
}

// SyncOnce pulls facilities and the configured buildings and upserts them.
// A failed fetch leaves the previously synced rows in place.
func (s *Service) SyncOnce(ctx context.Context) Report {
	start := s.now()
	var report Report

	facilities, err := s.fetchFacilities(ctx)
	switch {
	case err != nil && len(facilities) == 0:
		s.log.WithError(err).Error("Facility fetch failed, keeping previous facilities")
		report.Failed = append(report.Failed, "facilities")
	default:
		if err != nil {
			s.log.WithError(err).Warn("Facility fetch incomplete, upserting what was retrieved")
		}
		if err := s.store.UpsertFacilities(ctx, facilities); err != nil {
			s.log.WithError(err).Error("Error upserting facilities")
			report.Failed = append(report.Failed, "facilities")
		} else {
			report.Facilities = len(facilities)
		}
	}

	var mu sync.Mutex
	pool := NewWorkerPool(s.workers, s.log, func(ctx context.Context, buildingID string) {
		spots, skipped, err := s.syncBuilding(ctx, buildingID)
		mu.Lock()
		defer mu.Unlock()
		report.Skipped += skipped
		if err != nil {
			s.log.WithError(err).WithField("building", buildingID).Error("Building sync failed")
			report.Failed = append(report.Failed, buildingID)
			return
		}
		report.Buildings++
		report.Spots += spots
	})
	pool.Start(ctx)
	for _, id := range s.cfg.BuildingIDs {
		if !pool.Dispatch(ctx, id) {
			break
		}
	}
	pool.Wait()

	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}

	s.log.WithFields(logrus.Fields{
		"facilities": report.Facilities,
		"buildings":  report.Buildings,
		"spots":      report.Spots,
		"skipped":    report.Skipped,
		"failed":     len(report.Failed),
		"took":       s.now().Sub(start).String(),
	}).Info("Registry sync finished")
	return report
}

func (s *Service) fetchFacilities(ctx context.Context) ([]model.Facility, error) {
	var out []model.Facility
	pageSize := max(s.cfg.PageSize, 1)
	total := 1
	for page := 1; (page-1)*pageSize < total; page++ {
		q := url.Values{}
		q.Set("siteId", s.cfg.SiteID)
		q.Set("page", strconv.Itoa(page))
		q.Set("pageSize", strconv.Itoa(pageSize))

		var resp facilityPage
		if err := s.getJSON(ctx, "/facilities?"+q.Encode(), &resp); err != nil {
			return out, fmt.Errorf("fetch facilities page %d: %w", page, err)
		}
		if resp.Total == 0 || len(resp.Items) == 0 {
			break
		}
		total = resp.Total
		for _, item := range resp.Items {
			out = append(out, toFacility(item, s.cfg.SiteID))
		}
		s.log.WithFields(logrus.Fields{"page": page, "total": total, "fetched": len(out)}).Debug("Fetched facility page")
	}
	return out, nil
}

func (s *Service) syncBuilding(ctx context.Context, id string) (int, int, error) {
	var payload buildingPayload
	if err := s.getJSON(ctx, "/buildings/"+url.PathEscape(id), &payload); err != nil {
		return 0, 0, fmt.Errorf("fetch building: %w", err)
	}
	if payload.ID == "" {
		payload.ID = id
	}

	building, skipped := s.toBuilding(payload)
	if err := s.store.UpsertBuilding(ctx, building); err != nil {
		return 0, skipped, err
	}
	return len(building.Spots), skipped, nil
}

func (s *Service) toBuilding(p buildingPayload) (model.Building, int) {
	b := model.Building{ID: p.ID, SiteID: p.SiteID, Name: p.Name}
	if b.SiteID == "" {
		b.SiteID = s.cfg.SiteID
	}
	skipped := 0
	seen := make(map[string]bool, len(p.Spots))
	for _, item := range p.Spots {
		parsed, err := parse.ParseSpotLabel(item.Label, item.Floor)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{"building": p.ID, "label": item.Label}).Warn("Skipping spot")
			skipped++
			continue
		}
		spotID := item.ID
		if spotID == "" {
			spotID = fmt.Sprintf("%s:%d:%s", p.ID, parsed.Floor, parsed.Code)
		}
		if seen[spotID] {
			skipped++
			continue
		}
		seen[spotID] = true
		b.Spots = append(b.Spots, model.ParkingSpot{
			ID:         spotID,
			BuildingID: p.ID,
			Floor:      parsed.Floor,
			Code:       parsed.Code,
			Label:      item.Label,
			Seq:        parsed.Seq,
		})
	}
	return b, skipped
}

func toFacility(item facilityItem, siteID string) model.Facility {
	f := model.Facility{
		ID:       item.ID,
		SiteID:   item.SiteID,
		Name:     item.Name,
		Capacity: max(item.Capacity, 1),
		OpensAt:  item.Hours.Opens,
		ClosesAt: item.Hours.Closes,
	}
	if f.SiteID == "" {
		f.SiteID = siteID
	}
	switch status := strings.ToLower(strings.TrimSpace(item.Status)); status {
	case "", model.FacilityOpen:
		f.Status = model.FacilityOpen
	case model.FacilityMaintenance:
		f.Status = model.FacilityMaintenance
	default:
		f.Status = model.FacilityClosed
	}
	return f
}

var errUpstream = errors.New("registry upstream error")

func (s *Service) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for key, value := range s.cfg.Headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status %d", errUpstream, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
