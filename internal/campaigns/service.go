package campaigns

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/catalog-discounts/internal/cache"
	"github.com/angelmondragon/catalog-discounts/pkg/clock"
	"github.com/angelmondragon/catalog-discounts/pkg/db"
	"github.com/angelmondragon/catalog-discounts/pkg/db/models"
	"github.com/angelmondragon/catalog-discounts/pkg/enums"
	pkgerrors "github.com/angelmondragon/catalog-discounts/pkg/errors"
	"github.com/angelmondragon/catalog-discounts/pkg/pricing"
)

const upcomingLimit = 5

var codePattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Service exposes campaign reads for storefronts and writes for operators.
type Service interface {
	Active(ctx context.Context) ([]CampaignDTO, error)
	Featured(ctx context.Context) (*CampaignDTO, error)
	Upcoming(ctx context.Context) ([]CampaignDTO, error)
	ByCode(ctx context.Context, code string) (*CampaignDTO, error)
	Rules(ctx context.Context) ([]pricing.Campaign, error)

	List(ctx context.Context) ([]AdminCampaignDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*AdminCampaignDTO, error)
	Create(ctx context.Context, input CampaignInput) (*AdminCampaignDTO, error)
	Update(ctx context.Context, id uuid.UUID, input CampaignInput) (*AdminCampaignDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CampaignInput is the validated payload for a campaign write.
type CampaignInput struct {
	Name           string
	Code           string
	Description    *string
	Value          decimal.Decimal
	Kind           enums.DiscountKind
	Scope          enums.CampaignScope
	StartDate      time.Time
	ExpirationDate time.Time
	Priority       int
	IsActive       bool
	CategoryIDs    []uuid.UUID
	ProductIDs     []uuid.UUID
}

type viewCache interface {
	Get(ctx context.Context, prefix string, params cache.Params, dest any) bool
	SetList(ctx context.Context, prefix string, params cache.Params, value any, nextTransition *time.Time)
	InvalidateAll(ctx context.Context) (int64, error)
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	cache    viewCache
	clock    clock.Clock
}

// NewService constructs the campaign service.
func NewService(repo *Repository, dbClient *db.Client, c viewCache, clk clock.Clock) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("campaign repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if c == nil {
		return nil, fmt.Errorf("cache required")
	}
	if clk == nil {
		clk = clock.NewReal()
	}
	return &service{repo: repo, dbClient: dbClient, cache: c, clock: clk}, nil
}

// Rules loads every flagged campaign for the resolver. Window checks happen
// in the engine.
func (s *service) Rules(ctx context.Context) ([]pricing.Campaign, error) {
	rows, err := s.repo.ListActiveFlagged(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaigns")
	}
	return ToRules(rows), nil
}

// Active lists campaigns running now, highest priority first.
func (s *service) Active(ctx context.Context) ([]CampaignDTO, error) {
	params := cache.Params{"view": "active"}
	var cached []CampaignDTO
	if s.cache.Get(ctx, cache.PrefixCampaigns, params, &cached) {
		return cached, nil
	}

	rows, err := s.repo.ListActiveFlagged(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaigns")
	}
	now := s.clock.Now()
	out := make([]CampaignDTO, 0, len(rows))
	windows := make([]pricing.Window, 0, len(rows))
	for i := range rows {
		rule := ToRule(rows[i])
		windows = append(windows, rule.Window())
		if rule.ActiveAt(now) {
			out = append(out, NewCampaignDTO(&rows[i]))
		}
	}
	s.cache.SetList(ctx, cache.PrefixCampaigns, params, out, pricing.NextTransition(now, windows...))
	return out, nil
}

// Featured returns the campaign the resolver would pick right now.
func (s *service) Featured(ctx context.Context) (*CampaignDTO, error) {
	rows, err := s.repo.ListActiveFlagged(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaigns")
	}
	selected, ok := pricing.SelectCampaign(ToRules(rows), s.clock.Now())
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active campaign")
	}
	for i := range rows {
		if rows[i].ID == selected.ID {
			dto := NewCampaignDTO(&rows[i])
			return &dto, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active campaign")
}

// Upcoming lists flagged campaigns that have not started yet, soonest first.
func (s *service) Upcoming(ctx context.Context) ([]CampaignDTO, error) {
	rows, err := s.repo.ListActiveFlagged(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaigns")
	}
	now := s.clock.Now()
	pending := make([]models.DiscountCampaign, 0, len(rows))
	for _, row := range rows {
		if row.StartDate.After(now) {
			pending = append(pending, row)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].StartDate.Before(pending[j].StartDate)
	})
	if len(pending) > upcomingLimit {
		pending = pending[:upcomingLimit]
	}
	out := make([]CampaignDTO, 0, len(pending))
	for i := range pending {
		out = append(out, NewCampaignDTO(&pending[i]))
	}
	return out, nil
}

// ByCode returns a flagged campaign by code regardless of its window.
func (s *service) ByCode(ctx context.Context, code string) (*CampaignDTO, error) {
	row, err := s.repo.FindActiveByCode(ctx, strings.ToLower(strings.TrimSpace(code)))
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	dto := NewCampaignDTO(row)
	return &dto, nil
}

func (s *service) List(ctx context.Context) ([]AdminCampaignDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	out := make([]AdminCampaignDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewAdminCampaignDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AdminCampaignDTO, error) {
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewAdminCampaignDTO(row), nil
}

// Create validates and stores a new campaign, then clears the cache.
func (s *service) Create(ctx context.Context, input CampaignInput) (*AdminCampaignDTO, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	campaign := &models.DiscountCampaign{}
	if err := s.apply(ctx, campaign, input); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, mapWriteError(err, "create campaign")
	}
	s.invalidate(ctx)
	return s.Get(ctx, campaign.ID)
}

// Update replaces every attribute of the campaign, then clears the cache.
func (s *service) Update(ctx context.Context, id uuid.UUID, input CampaignInput) (*AdminCampaignDTO, error) {
	input = normalizeInput(input)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	campaign, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, campaign, input); err != nil {
		return nil, err
	}
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Update(ctx, campaign)
	}); err != nil {
		return nil, mapWriteError(err, "update campaign")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes the campaign, then clears the cache.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var deleted bool
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		deleted, err = s.repo.WithTx(tx).Delete(ctx, id)
		return err
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
	}
	s.invalidate(ctx)
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.DiscountCampaign, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return row, nil
}

// apply copies input onto campaign and resolves the scope ids.
func (s *service) apply(ctx context.Context, campaign *models.DiscountCampaign, input CampaignInput) error {
	categories, err := s.repo.FindCategories(ctx, input.CategoryIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	if len(categories) != len(input.CategoryIDs) {
		return pkgerrors.New(pkgerrors.CodeValidation, "category_ids contains unknown categories")
	}
	products, err := s.repo.FindProducts(ctx, input.ProductIDs)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	if len(products) != len(input.ProductIDs) {
		return pkgerrors.New(pkgerrors.CodeValidation, "product_ids contains unknown products")
	}

	campaign.Name = input.Name
	campaign.Code = input.Code
	campaign.Description = input.Description
	campaign.Value = input.Value
	campaign.Kind = input.Kind
	campaign.Scope = input.Scope
	campaign.StartDate = input.StartDate.UTC()
	campaign.ExpirationDate = input.ExpirationDate.UTC()
	campaign.Priority = input.Priority
	campaign.IsActive = input.IsActive
	campaign.Categories = categories
	campaign.Products = products
	if campaign.Categories == nil {
		campaign.Categories = []models.Category{}
	}
	if campaign.Products == nil {
		campaign.Products = []models.Product{}
	}
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	// the write already committed; a stale cache expires on its own TTL
	_, _ = s.cache.InvalidateAll(ctx)
}

func normalizeInput(input CampaignInput) CampaignInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Code = strings.ToLower(strings.TrimSpace(input.Code))
	input.CategoryIDs = dedupeIDs(input.CategoryIDs)
	input.ProductIDs = dedupeIDs(input.ProductIDs)
	return input
}

func validateInput(input CampaignInput) error {
	if input.Name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !codePattern.MatchString(input.Code) {
		return pkgerrors.New(pkgerrors.CodeValidation, "code must be a lowercase slug")
	}
	if !input.Scope.IsValid() {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid campaign scope %q", input.Scope)
	}
	if err := pricing.ValidateAmount(input.Kind, input.Value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	if input.StartDate.IsZero() || input.ExpirationDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start_date and expiration_date are required")
	}
	if err := pricing.ValidateWindow(&input.StartDate, &input.ExpirationDate); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	switch input.Scope {
	case enums.CampaignScopeCategory:
		if len(input.CategoryIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "category campaigns need at least one category")
		}
	case enums.CampaignScopeProducts:
		if len(input.ProductIDs) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "product campaigns need at least one product")
		}
	}
	return nil
}

func mapWriteError(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	if db.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "campaign code already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
