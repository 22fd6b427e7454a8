package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/repositories"
	"github.com/yoockh/journai/internal/utils"
)

type UserService interface {
	Touch(ctx context.Context, p models.UserProfile) (created bool, err error)
	Get(ctx context.Context, uid string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type userService struct {
	users repositories.UserRepository
	now   func() time.Time
}

func NewUserService(users repositories.UserRepository, now func() time.Time) UserService {
	if now == nil {
		now = time.Now
	}
	return &userService{users: users, now: now}
}

func (s *userService) Touch(ctx context.Context, p models.UserProfile) (bool, error) {
	const op = "UserService.Touch"

	p.UID = strings.TrimSpace(p.UID)
	if p.UID == "" {
		return false, utils.E(utils.CodeInvalidArgument, op, "uid is required", nil)
	}

	created, err := s.users.TouchUser(ctx, p, s.now().UTC())
	if err != nil {
		return false, utils.E(utils.CodeInternal, op, "failed to save user", err)
	}
	return created, nil
}

func (s *userService) Get(ctx context.Context, uid string) (*models.User, error) {
	const op = "UserService.Get"

	if uid == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "uid is required", nil)
	}
	u, err := s.users.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	const op = "UserService.List"

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list users", err)
	}
	return users, nil
}
