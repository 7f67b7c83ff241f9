package usecase

import (
	"context"
	"fmt"
	"strings"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"
)

// 変更系は監査ログと同じTxで書く。
// ロール変更は token_version を進めるので、対象ユーザーの発行済みトークンは使えなくなる。
type AdminUserUsecase struct {
	tx    repo.TransactionManager
	users repo.UserRepository
	clock Clock
}

func NewAdminUserUsecase(tx repo.TransactionManager, users repo.UserRepository, clock Clock) *AdminUserUsecase {
	if clock == nil {
		clock = SystemClock{}
	}
	return &AdminUserUsecase{tx: tx, users: users, clock: clock}
}

func (u *AdminUserUsecase) List(ctx context.Context) ([]model.User, error) {
	users, err := u.users.List(ctx)
	if err != nil {
		return []model.User{}, dbError("list users", err)
	}
	return users, nil
}

// 自分自身は消せない
func (u *AdminUserUsecase) Delete(ctx context.Context, adminID string, userID string) error {
	if adminID == "" {
		return newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(userID) == "" {
		return validationError("invalid id")
	}
	if userID == adminID {
		return newKindErrorf(ErrForbidden, "cannot delete yourself")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		us, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrNotFound {
			return newKindError(ErrNotFound)
		}
		if err != nil {
			return dbError("find user", err)
		}

		if err := r.Users().Delete(ctx, userID); err != nil {
			if err == repo.ErrNotFound {
				return newKindError(ErrNotFound)
			}
			return dbError("delete user", err)
		}

		return u.audit(ctx, r, adminID, model.AuditActionDeleteUser, userID,
			fmt.Sprintf(`{"email":%q,"role":%q}`, us.Email, us.Role), "")
	})
	return passOrDBError("delete user", err)
}

// Admin ↔ Customer を入れ替える
func (u *AdminUserUsecase) ToggleRole(ctx context.Context, adminID string, userID string) (model.User, error) {
	if adminID == "" {
		return model.User{}, newKindError(ErrUnauthorized)
	}
	if strings.TrimSpace(userID) == "" {
		return model.User{}, validationError("invalid id")
	}
	if userID == adminID {
		return model.User{}, newKindErrorf(ErrForbidden, "cannot change your own role")
	}

	var out model.User
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		us, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrNotFound {
			return newKindError(ErrNotFound)
		}
		if err != nil {
			return dbError("find user", err)
		}

		next := model.RoleAdmin
		if us.Role == model.RoleAdmin {
			next = model.RoleCustomer
		}
		if err := r.Users().UpdateRole(ctx, userID, next); err != nil {
			if err == repo.ErrNotFound {
				return newKindError(ErrNotFound)
			}
			return dbError("update role", err)
		}

		if err := u.audit(ctx, r, adminID, model.AuditActionUpdateUserRole, userID,
			fmt.Sprintf(`{"role":%q}`, us.Role), fmt.Sprintf(`{"role":%q}`, next)); err != nil {
			return err
		}

		us.Role = next
		us.TokenVersion++
		out = us
		return nil
	})
	if err != nil {
		return model.User{}, passOrDBError("toggle role", err)
	}
	return out, nil
}

func (u *AdminUserUsecase) audit(ctx context.Context, r repo.TxRepos, adminID string, action model.AuditAction, userID, before, after string) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  adminID,
		Action:       action,
		ResourceType: model.AuditResourceUser,
		ResourceID:   userID,
		BeforeJSON:   before,
		AfterJSON:    after,
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return dbError("create audit log", err)
	}
	return nil
}
