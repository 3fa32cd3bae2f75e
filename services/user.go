package services

import (
	"github.com/inkwell-cms/inkwell_api/dto"
	"github.com/inkwell-cms/inkwell_api/model"
	"github.com/inkwell-cms/inkwell_api/shared"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

type UserService struct {
	appContext.DefaultService

	sqlSvc   *PostgresService
	tokenSvc *RefreshTokenService
}

const USER_SVC = "user_svc"

func (svc UserService) Id() string {
	return USER_SVC
}

func (svc *UserService) Configure(ctx *appContext.Context) error {
	return svc.DefaultService.Configure(ctx)
}

func (svc *UserService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.tokenSvc = svc.Service(REFRESH_TOKEN_SVC).(*RefreshTokenService)
	return nil
}

func (svc *UserService) GetProfile(userID string) (*dto.UserInfo, error) {
	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}
	info := toUserInfo(user)
	return &info, nil
}

func (svc *UserService) UpdateProfile(userID string, req dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}

	if req.Username != "" && req.Username != user.Username {
		if _, err := svc.sqlSvc.GetUserByUsername(req.Username); err == nil {
			return nil, shared.NewConflictError(nil, "Username already taken")
		}
		user.Username = req.Username
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.AvatarURL != "" {
		user.AvatarURL = req.AvatarURL
	}

	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to update profile")
	}

	info := toUserInfo(user)
	return &info, nil
}

func (svc *UserService) AdminListUsers(page, limit int) (*dto.AdminUserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}

	users, total, err := svc.sqlSvc.ListUsers((page-1)*limit, limit)
	if err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to list users")
	}

	out := make([]dto.AdminUserInfo, 0, len(users))
	for i := range users {
		out = append(out, toAdminUserInfo(&users[i]))
	}

	return &dto.AdminUserListResponse{
		Users: out,
		Total: int(total),
		Page:  page,
		Limit: limit,
	}, nil
}

// AdminUpdateUser changes role or active state. Deactivation revokes every
// session the user holds.
func (svc *UserService) AdminUpdateUser(userID string, req dto.AdminUpdateUserRequest) (*dto.AdminUserInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}

	user, err := svc.sqlSvc.GetUser(userID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "User not found")
	}

	if req.Role != nil {
		user.Role = *req.Role
	}
	deactivated := false
	if req.IsActive != nil && user.IsActive != *req.IsActive {
		user.IsActive = *req.IsActive
		deactivated = !user.IsActive
	}

	if err := svc.sqlSvc.UpdateUser(user); err != nil {
		return nil, shared.NewInternalError(svc.sqlSvc.HandleError(err), "Failed to update user")
	}

	if deactivated {
		if err := svc.tokenSvc.RevokeAllForUser(userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Error("Failed to revoke sessions for deactivated user")
		}
	}

	info := toAdminUserInfo(user)
	return &info, nil
}

func toAdminUserInfo(user *model.User) dto.AdminUserInfo {
	return dto.AdminUserInfo{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		IsActive:      user.IsActive,
		CreatedAt:     user.CreatedAt,
		LastLoginAt:   user.LastLoginAt,
	}
}
