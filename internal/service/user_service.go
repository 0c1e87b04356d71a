package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-tracker/internal/apperr"
	"go-inventory-tracker/internal/model"
	"go-inventory-tracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.User, error)
	// DeleteUser keeps the user's ledger entries with their actor cleared.
	DeleteUser(ctx context.Context, userID uuid.UUID) error
	ResetPassword(ctx context.Context, username, newPassword string) error
	GetAllUsers(ctx context.Context) ([]model.UserResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error)
	// EnsureAdmin creates the bootstrap account when it is missing.
	EnsureAdmin(ctx context.Context, username, password string) (bool, error)
}

type CreateUserRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=150"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Email    string `json:"email" form:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" form:"full_name"`
}

type userService struct {
	userRepo repository.UserRepository
	db       *gorm.DB
}

func NewUserService(userRepo repository.UserRepository, db *gorm.DB) UserService {
	return &userService{userRepo: userRepo, db: db}
}

func (s *userService) CreateUser(ctx context.Context, req *CreateUserRequest, actor Actor) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := firstInvalid(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil {
		return nil, apperr.Invalid("username", "a user with that username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: true,
	}
	user.CreatedBy = actor.Ref()
	user.UpdatedBy = actor.Ref()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Invalid("username", "a user with that username already exists")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return wrapNotFound(s.userRepo.Delete(tx, userID), "user", userID)
	})
}

func (s *userService) ResetPassword(ctx context.Context, username, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.Invalid("password", "must be at least 6 characters")
	}
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return wrapNotFound(err, "user", username)
	}
	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash password")
	}
	return s.userRepo.UpdatePassword(ctx, user.ID, user.Password)
}

func (s *userService) GetAllUsers(ctx context.Context) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "user", id)
	}
	response := user.ToResponse()
	return &response, nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	_, err := s.CreateUser(ctx, &CreateUserRequest{
		Username: username,
		Password: password,
		FullName: "Administrator",
	}, SystemActor)
	return err == nil, err
}
