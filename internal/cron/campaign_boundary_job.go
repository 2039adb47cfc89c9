package cron

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

const campaignBoundaryJobName = "campaign-boundary"

// CampaignBoundaryJobParams configure the boundary job.
type CampaignBoundaryJobParams struct {
	Logger   *logger.Logger
	Windows  windowSource
	Cache    cacheClearer
	Clock    clock.Clock
	Lookback time.Duration
}

type windowSource interface {
	Windows(ctx context.Context) ([]pricing.Window, error)
}

type cacheClearer interface {
	InvalidateAll(ctx context.Context) (int64, error)
}

// campaignBoundaryJob clears cached payloads once a discount window has
// opened or closed since the previous run. Cache TTLs are already capped at
// the next transition; this catches windows edited after the entry was
// written.
type campaignBoundaryJob struct {
	logg    *logger.Logger
	windows windowSource
	cache   cacheClearer
	clock   clock.Clock

	mu      sync.Mutex
	lastRun time.Time
}

// NewCampaignBoundaryJob builds the boundary job. The first run looks back by
// Lookback, normally the cron interval.
func NewCampaignBoundaryJob(params CampaignBoundaryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Windows == nil {
		return nil, fmt.Errorf("window source required")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("cache required")
	}
	clk := params.Clock
	if clk == nil {
		clk = clock.NewReal()
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultInterval
	}
	return &campaignBoundaryJob{
		logg:    params.Logger,
		windows: params.Windows,
		cache:   params.Cache,
		clock:   clk,
		lastRun: clk.Now().Add(-lookback),
	}, nil
}

func (j *campaignBoundaryJob) Name() string { return campaignBoundaryJobName }

func (j *campaignBoundaryJob) Run(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.clock.Now()
	windows, err := j.windows.Windows(ctx)
	if err != nil {
		return fmt.Errorf("load windows: %w", err)
	}
	crossed := countCrossed(windows, j.lastRun, now)
	if crossed == 0 {
		j.lastRun = now
		return nil
	}

	deleted, err := j.cache.InvalidateAll(ctx)
	if err != nil {
		// keep lastRun so the next cycle retries
		return fmt.Errorf("invalidate cache: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"crossed": crossed,
		"deleted": deleted,
		"since":   j.lastRun.Format(time.RFC3339),
	}), "discount window boundary crossed")
	j.lastRun = now
	return nil
}

// countCrossed counts window legs in (since, now].
func countCrossed(windows []pricing.Window, since, now time.Time) int {
	crossed := 0
	inRange := func(t *time.Time) bool {
		return t != nil && t.After(since) && !t.After(now)
	}
	for _, w := range windows {
		if inRange(w.Start) {
			crossed++
		}
		if inRange(w.End) {
			crossed++
		}
	}
	return crossed
}
