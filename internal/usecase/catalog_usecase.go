package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"

	"github.com/shopspring/decimal"
)

type CatalogUsecase struct {
	listings repo.ListingRepository
	tx       repo.TransactionManager
	clock    Clock
}

// DI
func NewCatalogUsecase(listings repo.ListingRepository, tx repo.TransactionManager, clock Clock) *CatalogUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &CatalogUsecase{listings: listings, tx: tx, clock: clock}
}

// GET /listings の入力
type ListListingsInput struct {
	Category string
	GameType string
	Search   string
}

type FacetsOutput struct {
	Categories []string `json:"categories"`
	GameTypes  []string `json:"game_types"`
}

func (u *CatalogUsecase) List(ctx context.Context, in ListListingsInput) ([]model.Listing, error) {
	if len(in.Search) > 100 {
		return []model.Listing{}, validationError("search too long")
	}

	ls, err := u.listings.List(ctx, repo.ListingFilter{
		Category: in.Category,
		GameType: in.GameType,
		Search:   in.Search,
	})
	if err != nil {
		return []model.Listing{}, dbError("list listings", err)
	}
	return ls, nil
}

func (u *CatalogUsecase) Get(ctx context.Context, id string) (model.Listing, error) {
	if strings.TrimSpace(id) == "" {
		return model.Listing{}, validationError("invalid listing id")
	}

	l, err := u.listings.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Listing{}, newKindError(ErrNotFound)
	}
	if err != nil {
		return model.Listing{}, dbError("find listing", err)
	}
	return l, nil
}

func (u *CatalogUsecase) Facets(ctx context.Context) (FacetsOutput, error) {
	cats, err := u.listings.DistinctCategories(ctx)
	if err != nil {
		return FacetsOutput{}, dbError("distinct categories", err)
	}
	types, err := u.listings.DistinctGameTypes(ctx)
	if err != nil {
		return FacetsOutput{}, dbError("distinct game types", err)
	}
	return FacetsOutput{Categories: cats, GameTypes: types}, nil
}

type ListingInput struct {
	GameName    string
	GameType    string
	Server      string
	Category    string
	Amount      int64
	Price       decimal.Decimal
	Stock       int64
	Description string
	ImageURL    string
}

func (in ListingInput) validate() error {
	if strings.TrimSpace(in.GameName) == "" {
		return validationError("game_name required")
	}
	if in.Price.IsNegative() {
		return validationError("price must be >= 0")
	}
	if in.Stock < 0 {
		return validationError("stock must be >= 0")
	}
	if in.Amount < 0 {
		return validationError("amount must be >= 0")
	}
	return nil
}

func (in ListingInput) toModel() model.Listing {
	return model.Listing{
		GameName:    strings.TrimSpace(in.GameName),
		GameType:    strings.TrimSpace(in.GameType),
		Server:      strings.TrimSpace(in.Server),
		Category:    strings.TrimSpace(in.Category),
		Amount:      in.Amount,
		Price:       in.Price,
		Stock:       in.Stock,
		Description: in.Description,
		ImageURL:    in.ImageURL,
	}
}

func (u *CatalogUsecase) AdminCreate(ctx context.Context, adminID string, in ListingInput) (model.Listing, error) {
	if adminID == "" {
		return model.Listing{}, newKindError(ErrUnauthorized)
	}
	if err := in.validate(); err != nil {
		return model.Listing{}, err
	}

	now := u.clock.Now()
	l := in.toModel()
	l.CreatedAt = now
	l.UpdatedAt = now

	created, err := u.listings.Create(ctx, l)
	if err != nil {
		return model.Listing{}, dbError("create listing", err)
	}
	return created, nil
}

func (u *CatalogUsecase) AdminUpdate(ctx context.Context, adminID string, id string, in ListingInput) (model.Listing, error) {
	if adminID == "" {
		return model.Listing{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(id) == "" {
		return model.Listing{}, validationError("invalid listing id")
	}
	if err := in.validate(); err != nil {
		return model.Listing{}, err
	}

	l := in.toModel()
	l.ID = id
	err := u.listings.Update(ctx, l)
	if err == repo.ErrNotFound {
		return model.Listing{}, newKindError(ErrNotFound)
	}
	if err != nil {
		return model.Listing{}, dbError("update listing", err)
	}
	return u.Get(ctx, id)
}

func (u *CatalogUsecase) AdminDelete(ctx context.Context, adminID string, id string) error {
	if adminID == "" {
		return newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(id) == "" {
		return validationError("invalid listing id")
	}

	err := u.listings.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return newKindError(ErrNotFound)
	}
	if err != nil {
		return dbError("delete listing", err)
	}
	return nil
}

// 在庫を絶対値で設定し、調整履歴と監査ログを同じTxで残す
func (u *CatalogUsecase) AdminSetStock(ctx context.Context, adminID string, id string, newStock int64, reason string) error {
	if adminID == "" {
		return newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(id) == "" {
		return validationError("invalid listing id")
	}
	if newStock < 0 {
		return validationError("stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return validationError("reason required")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		l, err := r.Listings().FindByID(ctx, id)
		if err == repo.ErrNotFound {
			return newKindError(ErrNotFound)
		}
		if err != nil {
			return dbError("find listing", err)
		}

		if err := r.Inventory().SetStock(ctx, id, newStock); err != nil {
			if err == repo.ErrNotFound {
				return newKindError(ErrNotFound)
			}
			return dbError("set stock", err)
		}

		now := u.clock.Now()
		if err := r.Inventory().CreateAdjustment(ctx, model.InventoryAdjustment{
			ListingID:   id,
			AdminUserID: adminID,
			Delta:       newStock - l.Stock,
			Reason:      strings.TrimSpace(reason),
			CreatedAt:   now,
		}); err != nil {
			return dbError("create adjustment", err)
		}

		//「誰が」「何を」「どの対象に」「どう変えたか」
		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  adminID,
			Action:       model.AuditActionUpdateStock,
			ResourceType: model.AuditResourceListing,
			ResourceID:   id,
			BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, l.Stock),
			AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
			CreatedAt:    now,
		}); err != nil {
			return dbError("create audit log", err)
		}
		return nil
	})
	return passOrDBError("set stock", err)
}

// サンプルカタログを投入する。force なら既存を消してから。
func (u *CatalogUsecase) Seed(ctx context.Context, force bool) (int, error) {
	seed := SeedListings()
	now := u.clock.Now()
	for i := range seed {
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		n, err := r.Listings().Count(ctx)
		if err != nil {
			return dbError("count listings", err)
		}
		if n > 0 && !force {
			return newKindErrorf(ErrConflict, "catalog already has %d listings", n)
		}
		if n > 0 {
			if err := r.Listings().DeleteAll(ctx); err != nil {
				return dbError("delete listings", err)
			}
		}
		if err := r.Listings().CreateBulk(ctx, seed); err != nil {
			return dbError("seed listings", err)
		}
		return nil
	})
	if err != nil {
		return 0, passOrDBError("seed", err)
	}
	return len(seed), nil
}

// 起動時用。空のときだけ投入する
func (u *CatalogUsecase) SeedIfEmpty(ctx context.Context) (int, error) {
	n, err := u.Seed(ctx, false)
	if errors.Is(err, ErrConflict) {
		return 0, nil
	}
	return n, err
}
