// Package handler 提供 HTTP 请求处理器
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"deepwriting-api/internal/config"
	"deepwriting-api/internal/domain/entity"
	"deepwriting-api/internal/domain/repository"
	"deepwriting-api/internal/interfaces/http/dto"
	apperrors "deepwriting-api/pkg/errors"
	"deepwriting-api/pkg/logger"
	"deepwriting-api/pkg/utils"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	jwtManager *utils.JWTManager
	cfg        config.JWTConfig
	users      repository.UserRepository
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg config.JWTConfig, users repository.UserRepository) *AuthHandler {
	return &AuthHandler{
		jwtManager: utils.NewJWTManager(cfg.Secret, cfg.Issuer),
		cfg:        cfg,
		users:      users,
	}
}

// Register 用户注册
// @Summary 用户注册
// @Description 创建新用户，邮箱唯一，密码至少 6 位，仅存散列
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RegisterRequest true "注册信息"
// @Success 201 {object} dto.Response[dto.AuthResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user := entity.NewUser(req.Email, req.Name)
	if err := user.SetPassword(req.Password); err != nil {
		logger.Error(ctx, "密码散列失败", err)
		dto.InternalError(c, "registration failed")
		return
	}

	if err := h.users.Create(ctx, user); err != nil {
		if apperrors.AsAppError(err).Code == apperrors.CodeEmailTaken {
			dto.FromError(c, err)
			return
		}
		logger.Error(ctx, "用户创建失败", err)
		dto.InternalError(c, "registration failed")
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		logger.Error(ctx, "签发令牌失败", err)
		dto.InternalError(c, "registration failed")
		return
	}

	logger.Info(ctx, "用户已注册", "user_id", user.ID)
	dto.Created(c, dto.AuthResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Login 用户登录
// @Summary 用户登录
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.LoginRequest true "登录信息"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	user, err := h.users.GetByEmail(ctx, req.Email)
	if err != nil {
		logger.Error(ctx, "用户查询失败", err)
		dto.InternalError(c, "login failed")
		return
	}
	// 账号不存在与密码错误返回同一个提示
	if user == nil || !user.CheckPassword(req.Password) {
		dto.Unauthorized(c, "invalid email or password")
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		logger.Error(ctx, "签发令牌失败", err)
		dto.InternalError(c, "login failed")
		return
	}

	dto.Success(c, dto.AuthResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Refresh 刷新令牌
// @Summary 用刷新令牌换取新的令牌对
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body dto.RefreshRequest true "刷新令牌"
// @Success 200 {object} dto.Response[dto.AuthResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	claims, err := h.jwtManager.ParseToken(req.RefreshToken)
	if err != nil || claims.Type != "refresh" {
		dto.Unauthorized(c, "invalid refresh token")
		return
	}

	user, err := h.users.GetByID(ctx, claims.UserID)
	if err != nil {
		logger.Error(ctx, "用户查询失败", err)
		dto.InternalError(c, "refresh failed")
		return
	}
	if user == nil {
		dto.Unauthorized(c, "invalid refresh token")
		return
	}

	tokens, err := h.issueTokens(user.ID)
	if err != nil {
		logger.Error(ctx, "签发令牌失败", err)
		dto.InternalError(c, "refresh failed")
		return
	}

	dto.Success(c, dto.AuthResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// Logout 登出
// @Summary 登出（无服务端会话，客户端丢弃令牌即可）
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.Response[gin.H]
// @Router /v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	dto.Success(c, gin.H{"ok": true})
}

// Me 当前用户信息
// @Summary 获取当前登录用户
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.Response[dto.UserResponse]
// @Failure 401 {object} dto.ErrorResponse
// @Router /v1/users/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := h.users.GetByID(ctx, c.GetString("user_id"))
	if err != nil {
		logger.Error(ctx, "用户查询失败", err)
		dto.InternalError(c, "failed to load user")
		return
	}
	if user == nil {
		dto.Unauthorized(c, "user not found")
		return
	}

	dto.Success(c, dto.ToUserResponse(user))
}

func (h *AuthHandler) issueTokens(userID string) (*utils.TokenPair, error) {
	accessTTL := h.cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	refreshTTL := h.cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = 168 * time.Hour
	}
	return h.jwtManager.GenerateTokenPair(userID, accessTTL, refreshTTL)
}
