package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/splicerhq/groupbuy_api/internal/models"
	"github.com/splicerhq/groupbuy_api/internal/repository"
	"github.com/splicerhq/groupbuy_api/internal/utils"
)

type AuthService struct {
	userRepo  *repository.UserRepository
	jwtExpiry time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, jwtExpiry time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, jwtExpiry: jwtExpiry}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(r.Name) == "" {
		errs.add("name", "Name is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs.add("email", "Invalid email address")
	}
	if len(r.Password) < 6 {
		errs.add("password", "Password must be at least 6 characters")
	}
	return errs.orNil()
}

// Register creates a user account with the default user role. Admin accounts
// are provisioned out of band.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
		Role:     models.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues a signed token. The same error is
// returned for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		log.Debug().Str("email", email).Msg("Login attempt for unknown email")
		return "", nil, utils.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Debug().Str("email", email).Msg("Password verification failed")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, s.jwtExpiry)
	if err != nil {
		return "", nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("Login successful")
	return token, user, nil
}

// GetUser loads the authenticated user's profile.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
