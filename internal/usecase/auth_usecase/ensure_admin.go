package auth

import (
	"context"
	"errors"

	"topupstore/internal/domain/model"
	"topupstore/internal/repository"
)

// 起動時に管理者アカウントを用意する。既にあれば何もしない。
type EnsureAdminUsecase struct {
	register *RegisterUserUsecase
}

func NewEnsureAdminUsecase(register *RegisterUserUsecase) *EnsureAdminUsecase {
	return &EnsureAdminUsecase{register: register}
}

// 作ったら true
func (u *EnsureAdminUsecase) Execute(ctx context.Context, email, password string) (bool, error) {
	_, err := u.register.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}

	_, err = u.register.create(ctx, RegisterUserInput{
		FullName: "Administrator",
		Email:    email,
		Password: password,
	}, model.RoleAdmin)
	if errors.Is(err, ErrEmailAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
