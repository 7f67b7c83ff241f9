package usecase

import (
	"context"
	"strings"

	"topupstore/internal/domain/model"
	repo "topupstore/internal/repository"
)

// 管理者操作の履歴を読む
type AuditLogUsecase struct {
	audits repo.AuditLogRepository
}

func NewAuditLogUsecase(audits repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{audits: audits}
}

type AuditLogListInput struct {
	ResourceType string
	ResourceID   string
	Action       string
	ActorUserID  string
	Page         int
	Limit        int
}

type AuditLogListOutput struct {
	Items []model.AuditLog `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

func (u *AuditLogUsecase) List(ctx context.Context, in AuditLogListInput) (AuditLogListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Limit == 0 {
		in.Limit = 50
	}
	if in.Page < 1 {
		return AuditLogListOutput{}, validationError("invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AuditLogListOutput{}, validationError("invalid limit")
	}

	f := repo.AuditLogFilter{
		ResourceID:  strings.TrimSpace(in.ResourceID),
		ActorUserID: strings.TrimSpace(in.ActorUserID),
		Limit:       in.Limit,
		Offset:      (in.Page - 1) * in.Limit,
	}
	if s := strings.TrimSpace(in.ResourceType); s != "" {
		rt, err := model.ParseAuditResourceType(s)
		if err != nil {
			return AuditLogListOutput{}, validationError("invalid resource_type: " + s)
		}
		f.ResourceType = rt
	}
	if s := strings.TrimSpace(in.Action); s != "" {
		a, err := model.ParseAuditAction(s)
		if err != nil {
			return AuditLogListOutput{}, validationError("invalid action: " + s)
		}
		f.Action = a
	}

	logs, total, err := u.audits.List(ctx, f)
	if err != nil {
		return AuditLogListOutput{}, dbError("list audit logs", err)
	}
	return AuditLogListOutput{Items: logs, Total: total, Page: in.Page, Limit: in.Limit}, nil
}
