package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/auth"
	"github.com/AlexeySalamakhin/salesboard/cmd/salesboard/models"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	IsUsernameExist(ctx context.Context, username string) (bool, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

type TokenManager interface {
	IssuePair(userID int64, username string) (access, refresh string, err error)
	IssueAccess(userID int64, username string) (string, error)
	Parse(token, tokenType string) (*auth.Claims, error)
}

type UserService struct {
	UserRepo UserRepo
	Tokens   TokenManager
	validate *validator.Validate
}

const usernameTakenMessage = "A user with that username already exists."

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}@.+\-_]+$`)

func NewUserService(repo UserRepo, tokens TokenManager) *UserService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return &UserService{UserRepo: repo, Tokens: tokens, validate: v}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	verr := s.validateRegister(req)
	if !verr.empty() {
		return nil, verr
	}
	exists, err := s.UserRepo.IsUsernameExist(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		verr.add("username", usernameTakenMessage)
		return nil, verr
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: string(hash),
	}
	if err := s.UserRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrUserExists) {
			verr.add("username", usernameTakenMessage)
			return nil, verr
		}
		return nil, err
	}
	return &models.RegisterResponse{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, nil
}

func (s *UserService) validateRegister(req models.RegisterRequest) *ValidationError {
	verr := &ValidationError{}
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			verr.add("non_field_errors", err.Error())
			return verr
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), fieldMessage(fe))
		}
		return verr
	}

	if req.Password != req.Password2 {
		verr.add("password", "Password fields didn't match.")
		return verr
	}
	attrs := []passwordAttribute{
		{"username", req.Username},
		{"first name", req.FirstName},
		{"last name", req.LastName},
		{"email address", req.Email},
	}
	for _, msg := range checkPassword(req.Password, attrs) {
		verr.add("password", msg)
	}
	return verr
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Invalid value."
	}
}

func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		verr := &ValidationError{}
		if req.Username == "" {
			verr.add("username", "This field is required.")
		}
		if req.Password == "" {
			verr.add("password", "This field is required.")
		}
		return nil, verr
	}
	user, err := s.UserRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	access, refresh, err := s.Tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &models.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new access token, provided the account is still active.
func (s *UserService) Refresh(ctx context.Context, req models.RefreshRequest) (*models.AccessToken, error) {
	if req.Refresh == "" {
		return nil, &ValidationError{Fields: map[string][]string{"refresh": {"This field is required."}}}
	}
	claims, err := s.Tokens.Parse(req.Refresh, auth.TokenTypeRefresh)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.UserRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	access, err := s.Tokens.IssueAccess(user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &models.AccessToken{Access: access}, nil
}
