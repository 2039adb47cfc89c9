package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
)

const (
	cacheWarmJobName  = "cache-warm"
	defaultWarmTopCap = 50
)

// CacheWarmJobParams configure the cache warm job.
type CacheWarmJobParams struct {
	Logger    *logger.Logger
	Products  productWarmer
	Campaigns campaignWarmer
	Top       int
}

type productWarmer interface {
	WarmTop(ctx context.Context, limit int) (int, error)
}

type campaignWarmer interface {
	Active(ctx context.Context) ([]campaigns.CampaignDTO, error)
}

type cacheWarmJob struct {
	logg      *logger.Logger
	products  productWarmer
	campaigns campaignWarmer
	top       int
}

// NewCacheWarmJob builds the job that renders the most requested payloads
// ahead of traffic. Campaigns is optional.
func NewCacheWarmJob(params CacheWarmJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product warmer required")
	}
	top := params.Top
	if top <= 0 {
		top = defaultWarmTopCap
	}
	return &cacheWarmJob{
		logg:      params.Logger,
		products:  params.Products,
		campaigns: params.Campaigns,
		top:       top,
	}, nil
}

func (j *cacheWarmJob) Name() string { return cacheWarmJobName }

func (j *cacheWarmJob) Run(ctx context.Context) error {
	var errs error
	warmed, err := j.products.WarmTop(ctx, j.top)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("warm products: %w", err))
	}
	if j.campaigns != nil {
		if _, err := j.campaigns.Active(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("warm campaigns: %w", err))
		}
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"warmed": warmed,
		"top":    j.top,
		"errors": len(multierr.Errors(errs)),
	}), "cache warm finished")
	return errs
}
