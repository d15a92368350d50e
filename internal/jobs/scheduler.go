package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"GtnPortal/internal/config"
	"GtnPortal/internal/logger"
	"GtnPortal/internal/masterdata"
)

// CronService schedules the price-ceiling refresh.
type CronService struct {
	config    map[string]interface{}
	refresher *CeilingRefresher
	schedule  string
	timeZone  string
	timeout   time.Duration
	cron      *cron.Cron
}

func NewCronService(cfg map[string]interface{}, repo masterdata.Repository) *CronService {
	if cfg == nil {
		cfg = map[string]interface{}{}
	}
	env := config.Load()

	refresh := RefreshConfig{URL: env.PriceListURL}
	if v, ok := cfg["pricelist_url"].(string); ok && v != "" {
		refresh.URL = v
	}
	if v, ok := cfg["max_retries"].(int); ok && v > 0 {
		refresh.MaxRetries = v
	}
	schedule := env.PriceListSchedule
	if v, ok := cfg["schedule"].(string); ok && v != "" {
		schedule = v
	}
	tz := env.TimeZone
	if v, ok := cfg["time_zone"].(string); ok && v != "" {
		tz = v
	}

	return &CronService{
		config:    cfg,
		refresher: NewCeilingRefresher(refresh, repo, nil, nil),
		schedule:  schedule,
		timeZone:  tz,
		timeout:   10 * time.Minute,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	if s.refresher.cfg.URL == "" {
		logger.L().Info("price list URL not set; ceiling refresh not scheduled")
		return nil
	}
	loc, err := time.LoadLocation(s.timeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone for price list refresh: %w", err)
	}

	s.cron = cron.New(cron.WithLocation(loc))
	if _, err := s.cron.AddFunc(s.schedule, s.run); err != nil {
		return fmt.Errorf("failed to schedule price list refresh: %w", err)
	}
	s.cron.Start()
	logger.Audit("price ceiling refresh scheduled", zap.String("schedule", s.schedule), zap.String("tz", s.timeZone))
	return nil
}

func (s *CronService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := s.refresher.RunOnce(ctx); err != nil {
		logger.Audit("price ceiling refresh failed", zap.Error(err))
	}
}

func (s *CronService) Stop() error {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	return nil
}
