package repository

import (
	"context"

	"topupstore/internal/domain/model"
)

// 保存・取得を約束
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	// まとめて引く。見つからないIDは結果に含まれない
	FindByIDs(ctx context.Context, userIDs []string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)
	// token_version も進める
	UpdateRole(ctx context.Context, userID string, role model.Role) error
	Delete(ctx context.Context, userID string) error
}
