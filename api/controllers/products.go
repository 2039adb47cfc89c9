package controllers

import (
	"net/http"
	"strings"

	"github.com/angelmondragon/catalog-discounts/api/responses"
	"github.com/angelmondragon/catalog-discounts/api/validators"
	"github.com/angelmondragon/catalog-discounts/internal/catalog"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/logger"
)

const maxSearchLength = 100

// ListProducts serves the filtered, paginated product card listing.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		input, err := parseListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func parseListInput(r *http.Request) (catalog.ListInput, error) {
	params, err := parsePagination(r)
	if err != nil {
		return catalog.ListInput{}, err
	}

	q := r.URL.Query()
	filters := catalog.ProductFilters{
		Search:       validators.SanitizeString(q.Get("search"), maxSearchLength),
		CategorySlug: strings.ToLower(validators.SanitizeString(q.Get("category"), 0)),
		Tags:         validators.ParseQueryList(r, "tag"),
	}
	if filters.PriceMin, err = validators.ParseQueryDecimal(r, "price_min"); err != nil {
		return catalog.ListInput{}, err
	}
	if filters.PriceMax, err = validators.ParseQueryDecimal(r, "price_max"); err != nil {
		return catalog.ListInput{}, err
	}
	if filters.HasDiscount, err = validators.ParseQueryBool(r, "has_discount"); err != nil {
		return catalog.ListInput{}, err
	}
	if filters.CreatedAfter, err = validators.ParseQueryTime(r, "created_after", false); err != nil {
		return catalog.ListInput{}, err
	}
	if filters.CreatedBefore, err = validators.ParseQueryTime(r, "created_before", true); err != nil {
		return catalog.ListInput{}, err
	}

	return catalog.ListInput{Filters: filters, Pagination: params}, nil
}

// ProductDetail resolves a product by the given lookup field taken from the
// URL parameter param.
func ProductDetail(svc catalog.Service, field catalog.LookupField, param string, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		value, err := requiredParam(r, param)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		if logg != nil && field == catalog.LookupID {
			ctx = logg.WithProductID(ctx, value)
		}

		detail, err := svc.Detail(ctx, catalog.Lookup{Field: field, Value: value})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func ProductsByCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		slug, err := requiredParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ByCategory(r.Context(), strings.ToLower(slug), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ProductsByTag(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		slug, err := requiredParam(r, "slug")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ByTag(r.Context(), slug, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func DiscountedProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		params, err := parsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Discounted(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func ListTags(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		tags, err := svc.Tags(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tags)
	}
}
