package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

// AuthOptions holds registration policy.
type AuthOptions struct {
	RequireProfileImage bool
}

// AuthService implements registration and login.
type AuthService struct {
	users    ports.UserRepository
	hasher   ports.PasswordHasher
	tokens   ports.TokenService
	images   ports.ImageStore
	validate *validator.Validate
	opts     AuthOptions
	log      zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenService,
	images ports.ImageStore,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		images:   images,
		validate: validator.New(),
		opts:     opts,
		log:      log,
	}
}

// Register validates the form, then stores the account with a zero balance.
// A profile image is uploaded after the insert; if that upload fails the
// account is kept with its image pending.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validateRegistration(in); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	taken, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: check uniqueness: %w", err)
	}
	if taken {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrUserAlreadyRegistered
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Fullname:     in.Fullname,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		ImageState:   domain.ImageStateCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyRegistered) {
			metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("register: %w", err)
	}
	metrics.RegistrationsTotal.WithLabelValues("created").Inc()

	if in.ProfileImage != nil {
		s.attachProfileImage(ctx, created, in.ProfileImage)
	}

	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

// validateRegistration checks fields in a fixed order so the first failure
// is deterministic.
func (s *AuthService) validateRegistration(in ports.RegisterInput) error {
	switch {
	case in.Fullname == "":
		return domain.ErrFullnameRequired
	case in.Username == "":
		return domain.ErrUsernameRequired
	case in.Email == "":
		return domain.ErrEmailRequired
	case in.Password == "":
		return domain.ErrPasswordRequired
	case len(in.Password) < domain.MinPasswordLength, len(in.Password) > domain.MaxPasswordLength:
		return domain.ErrPasswordLengthInvalid
	case !s.validEmail(in.Email):
		return domain.ErrEmailFormatInvalid
	case s.opts.RequireProfileImage && in.ProfileImage == nil:
		return domain.ErrProfileImageRequired
	}
	return nil
}

func (s *AuthService) attachProfileImage(ctx context.Context, u *domain.User, img *domain.Image) {
	url, err := s.images.Upload(ctx, domain.FolderProfileImages, u.ID, img)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID).Msg("profile image upload failed, image left pending")
		return
	}
	if err := s.users.AttachProfileImage(ctx, u.ID, url); err != nil {
		s.log.Warn().Err(err).Str("user_id", u.ID).Msg("failed to attach profile image")
		return
	}
	u.ProfileImgURL = url
	u.ImageState = domain.ImageStateAttached
}

func (s *AuthService) validEmail(email string) bool {
	return s.validate.Var(email, "email") == nil
}

// Login verifies credentials and issues a session token. The token carries
// the user id, username and fullname only.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrEmailRequired
	case password == "":
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrPasswordRequired
	case !s.validEmail(email):
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrEmailFormatInvalid
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("email_not_registered").Inc()
			return nil, domain.ErrEmailNotRegistered
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("password_invalid").Inc()
		return nil, domain.ErrPasswordInvalid
	}

	token, err := s.tokens.Issue(ports.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Fullname: user.Fullname,
	})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.LoginResult{AccessToken: token, User: user}, nil
}
