package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/catalog-discounts/api/controllers"
	"github.com/angelmondragon/catalog-discounts/api/middleware"
	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/internal/campaigns"
	"github.com/angelmondragon/catalog-discounts/internal/catalog"
	"github.com/angelmondragon/catalog-discounts/pkg/config"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
	"github.com/angelmondragon/catalog-discounts/pkg/redis"
)

type cacheOperator interface {
	InvalidateAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (cache.Stats, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gatherer prometheus.Gatherer,
	catalogService catalog.Service,
	catalogAdmin catalog.AdminService,
	campaignService campaigns.Service,
	cacheOps cacheOperator,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(catalogService, logg))
		r.Get("/discounted", controllers.DiscountedProducts(catalogService, logg))
		r.Get("/tags/all", controllers.ListTags(catalogService, logg))
		r.Get("/category/{slug}", controllers.ProductsByCategory(catalogService, logg))
		r.Get("/tag/{slug}", controllers.ProductsByTag(catalogService, logg))
		r.Get("/slug/{slug}", controllers.ProductDetail(catalogService, catalog.LookupSlug, "slug", logg))
		r.Get("/key/{key}", controllers.ProductDetail(catalogService, catalog.LookupKey, "key", logg))
		r.Get("/{productId}", controllers.ProductDetail(catalogService, catalog.LookupID, "productId", logg))
	})

	r.Route("/api/v1/campaigns", func(r chi.Router) {
		r.Get("/active", controllers.ActiveCampaigns(campaignService, logg))
		r.Get("/featured", controllers.FeaturedCampaign(campaignService, logg))
		r.Get("/upcoming", controllers.UpcomingCampaigns(campaignService, logg))
		r.Get("/{code}", controllers.CampaignByCode(campaignService, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole(logg, enums.AdminRoleAdmin))

		r.Get("/ping", controllers.AdminPing())

		r.Route("/campaigns", func(r chi.Router) {
			r.Get("/", controllers.AdminListCampaigns(campaignService, logg))
			r.Post("/", controllers.AdminCreateCampaign(campaignService, logg))
			r.Get("/{campaignId}", controllers.AdminGetCampaign(campaignService, logg))
			r.Put("/{campaignId}", controllers.AdminUpdateCampaign(campaignService, logg))
			r.Delete("/{campaignId}", controllers.AdminDeleteCampaign(campaignService, logg))
		})

		r.Post("/products/{productId}/tiers", controllers.AdminCreateTier(catalogAdmin, logg))
		r.Put("/tiers/{tierId}", controllers.AdminUpdateTier(catalogAdmin, logg))
		r.Delete("/tiers/{tierId}", controllers.AdminDeleteTier(catalogAdmin, logg))

		r.Post("/products/{productId}/discounts", controllers.AdminCreateProductDiscount(catalogAdmin, logg))
		r.Delete("/product-discounts/{discountId}", controllers.AdminDeleteProductDiscount(catalogAdmin, logg))
		r.Post("/categories/{categoryId}/discounts", controllers.AdminCreateCategoryDiscount(catalogAdmin, logg))
		r.Delete("/category-discounts/{discountId}", controllers.AdminDeleteCategoryDiscount(catalogAdmin, logg))

		r.Route("/cache", func(r chi.Router) {
			r.Post("/warm", controllers.AdminWarmCache(catalogService, cacheOps, cfg.Cache.WarmTop, logg))
			r.Delete("/", controllers.AdminClearCache(cacheOps, logg))
			r.Get("/stats", controllers.AdminCacheStats(cacheOps, logg))
		})
	})

	return r
}
