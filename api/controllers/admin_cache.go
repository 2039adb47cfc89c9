package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/catalog-discounts/api/responses"
	"github.com/angelmondragon/catalog-discounts/api/validators"
	"github.com/angelmondragon/catalog-discounts/internal/cache"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
)

const maxWarmTop = 500

type productWarmer interface {
	WarmTop(ctx context.Context, limit int) (int, error)
}

type cacheOperator interface {
	InvalidateAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (cache.Stats, error)
}

type warmCacheResponse struct {
	Cleared int64 `json:"cleared"`
	Warmed  int   `json:"warmed"`
	Top     int   `json:"top"`
}

// AdminWarmCache renders the first listing pages and the newest product
// details into the cache. ?clear=true drops every entry first.
func AdminWarmCache(products productWarmer, ops cacheOperator, defaultTop int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if products == nil || ops == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cache unavailable"))
			return
		}
		if defaultTop <= 0 || defaultTop > maxWarmTop {
			defaultTop = 50
		}
		top, err := validators.ParseQueryInt(r, "top", defaultTop, 1, maxWarmTop)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clearFirst, err := validators.ParseQueryBool(r, "clear")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := warmCacheResponse{Top: top}
		if clearFirst != nil && *clearFirst {
			if resp.Cleared, err = ops.InvalidateAll(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cache"))
				return
			}
		}
		if resp.Warmed, err = products.WarmTop(r.Context(), top); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

func AdminClearCache(ops cacheOperator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ops == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cache unavailable"))
			return
		}
		cleared, err := ops.InvalidateAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cache"))
			return
		}
		responses.WriteSuccess(w, map[string]int64{"cleared": cleared})
	}
}

func AdminCacheStats(ops cacheOperator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ops == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cache unavailable"))
			return
		}
		stats, err := ops.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cache stats"))
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
