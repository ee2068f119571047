package repository

import (
	"context"

	"deepwriting-api/internal/domain/entity"
)

// UserRepository 用户仓储接口
type UserRepository interface {
	// Create 创建用户；邮箱已存在时返回 ErrEmailTaken
	Create(ctx context.Context, user *entity.User) error
	// GetByID 按 ID 查询用户
	GetByID(ctx context.Context, id string) (*entity.User, error)
	// GetByEmail 按邮箱查询用户
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
