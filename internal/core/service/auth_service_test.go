package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/password"
)

func newTestAuthService(users *memUsers, images *stubImages, opts AuthOptions) (*AuthService, *stubTokens) {
	tokens := &stubTokens{}
	return NewAuthService(users, fakeHasher{}, tokens, images, opts, zerolog.Nop()), tokens
}

func validRegistration() ports.RegisterInput {
	return ports.RegisterInput{
		Fullname: "Test User",
		Username: "testuser",
		Email:    "testuser@example.com",
		Password: "password123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	users := newMemUsers()
	svc := NewAuthService(users, password.NewHasher(bcrypt.MinCost), &stubTokens{}, newStubImages(), AuthOptions{}, zerolog.Nop())

	user, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if user.Balance != 0 || user.FinishedRecipeCount != 0 {
		t.Fatalf("expected zero balance and count, got %d/%d", user.Balance, user.FinishedRecipeCount)
	}
	if user.PasswordHash == "password123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.ImageState != domain.ImageStateCreated {
		t.Fatalf("expected image pending without upload, got %q", user.ImageState)
	}
}

func TestAuthService_Register_TrimsFields(t *testing.T) {
	users := newMemUsers()
	svc, _ := newTestAuthService(users, newStubImages(), AuthOptions{})

	in := validRegistration()
	in.Username = "  testuser  "
	in.Email = " testuser@example.com "
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Username != "testuser" || user.Email != "testuser@example.com" {
		t.Fatalf("expected trimmed fields, got %q %q", user.Username, user.Email)
	}
}

func TestAuthService_Register_ValidationOrder(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*ports.RegisterInput)
		want   error
	}{
		{"all empty", func(in *ports.RegisterInput) { *in = ports.RegisterInput{} }, domain.ErrFullnameRequired},
		{"missing username", func(in *ports.RegisterInput) { in.Username = ""; in.Email = "" }, domain.ErrUsernameRequired},
		{"missing email", func(in *ports.RegisterInput) { in.Email = ""; in.Password = "" }, domain.ErrEmailRequired},
		{"missing password", func(in *ports.RegisterInput) { in.Password = "" }, domain.ErrPasswordRequired},
		{"short password before bad email", func(in *ports.RegisterInput) { in.Password = "short"; in.Email = "nope" }, domain.ErrPasswordLengthInvalid},
		{"bad email", func(in *ports.RegisterInput) { in.Email = "testuser.example.com" }, domain.ErrEmailFormatInvalid},
		{"whitespace fullname", func(in *ports.RegisterInput) { in.Fullname = "   " }, domain.ErrFullnameRequired},
		{"missing fullname before long password", func(in *ports.RegisterInput) { in.Fullname = ""; in.Password = strings.Repeat("x", 73) }, domain.ErrFullnameRequired},
		{"long password", func(in *ports.RegisterInput) { in.Password = strings.Repeat("x", domain.MaxPasswordLength+1) }, domain.ErrPasswordLengthInvalid},
		{"long password before bad email", func(in *ports.RegisterInput) { in.Password = strings.Repeat("x", 73); in.Email = "nope" }, domain.ErrPasswordLengthInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			users := newMemUsers()
			svc, _ := newTestAuthService(users, newStubImages(), AuthOptions{})

			in := validRegistration()
			tc.mutate(&in)
			if _, err := svc.Register(context.Background(), in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(users.byID) != 0 {
				t.Fatalf("expected nothing stored on validation failure")
			}
		})
	}
}

func TestAuthService_Register_ExactMinimumPassword(t *testing.T) {
	svc, _ := newTestAuthService(newMemUsers(), newStubImages(), AuthOptions{})

	in := validRegistration()
	in.Password = strings.Repeat("x", domain.MinPasswordLength)
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("expected 8-char password to be accepted, got %v", err)
	}
}

func TestAuthService_Register_ExactMaximumPassword(t *testing.T) {
	svc, _ := newTestAuthService(newMemUsers(), newStubImages(), AuthOptions{})

	in := validRegistration()
	in.Password = strings.Repeat("x", domain.MaxPasswordLength)
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("expected 72-byte password to be accepted, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	users := newMemUsers()
	svc, _ := newTestAuthService(users, newStubImages(), AuthOptions{})

	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	sameUsername := validRegistration()
	sameUsername.Email = "other@example.com"
	if _, err := svc.Register(context.Background(), sameUsername); !errors.Is(err, domain.ErrUserAlreadyRegistered) {
		t.Fatalf("expected ErrUserAlreadyRegistered for username, got %v", err)
	}

	sameEmail := validRegistration()
	sameEmail.Username = "other"
	if _, err := svc.Register(context.Background(), sameEmail); !errors.Is(err, domain.ErrUserAlreadyRegistered) {
		t.Fatalf("expected ErrUserAlreadyRegistered for email, got %v", err)
	}
}

func TestAuthService_Register_RaceLostAtInsert(t *testing.T) {
	users := newMemUsers()
	users.createErr = domain.ErrUserAlreadyRegistered
	svc, _ := newTestAuthService(users, newStubImages(), AuthOptions{})

	if _, err := svc.Register(context.Background(), validRegistration()); !errors.Is(err, domain.ErrUserAlreadyRegistered) {
		t.Fatalf("expected ErrUserAlreadyRegistered, got %v", err)
	}
}

func TestAuthService_Register_ProfileImage(t *testing.T) {
	users := newMemUsers()
	images := newStubImages()
	svc, _ := newTestAuthService(users, images, AuthOptions{})

	in := validRegistration()
	in.ProfileImage = testImage()
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ImageState != domain.ImageStateAttached {
		t.Fatalf("expected image attached, got %q", user.ImageState)
	}
	want := "https://cdn.example.com/" + domain.FolderProfileImages + "/" + user.ID
	if user.ProfileImgURL != want {
		t.Fatalf("unexpected url %q, want %q", user.ProfileImgURL, want)
	}
	stored, _ := users.FindByID(context.Background(), user.ID)
	if stored.ProfileImgURL != want {
		t.Fatalf("expected url persisted, got %q", stored.ProfileImgURL)
	}
}

func TestAuthService_Register_UploadFailureKeepsUser(t *testing.T) {
	users := newMemUsers()
	images := newStubImages()
	images.failFor[domain.FolderProfileImages+"/user-1"] = errUpload
	svc, _ := newTestAuthService(users, images, AuthOptions{})

	in := validRegistration()
	in.ProfileImage = testImage()
	user, err := svc.Register(context.Background(), in)
	if err != nil {
		t.Fatalf("expected registration to succeed, got %v", err)
	}
	if user.ImageState != domain.ImageStateCreated || user.ProfileImgURL != "" {
		t.Fatalf("expected image pending, got %q %q", user.ImageState, user.ProfileImgURL)
	}
	if _, err := users.FindByID(context.Background(), user.ID); err != nil {
		t.Fatalf("expected user to be kept: %v", err)
	}
}

func TestAuthService_Register_ProfileImagePolicy(t *testing.T) {
	svc, _ := newTestAuthService(newMemUsers(), newStubImages(), AuthOptions{RequireProfileImage: true})

	if _, err := svc.Register(context.Background(), validRegistration()); !errors.Is(err, domain.ErrProfileImageRequired) {
		t.Fatalf("expected ErrProfileImageRequired, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	users := newMemUsers()
	svc, tokens := newTestAuthService(users, newStubImages(), AuthOptions{})
	registered, err := svc.Register(context.Background(), validRegistration())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	res, err := svc.Login(context.Background(), "testuser@example.com", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if res.AccessToken != "token-for-"+registered.ID {
		t.Fatalf("unexpected token %q", res.AccessToken)
	}
	if res.User.ID != registered.ID {
		t.Fatalf("unexpected user id %q", res.User.ID)
	}
	if len(tokens.issued) != 1 {
		t.Fatalf("expected one token issued")
	}
	claims := tokens.issued[0]
	if claims.UserID != registered.ID || claims.Username != "testuser" || claims.Fullname != "Test User" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	users := newMemUsers()
	svc, tokens := newTestAuthService(users, newStubImages(), AuthOptions{})
	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	cases := []struct {
		name, email, password string
		want                  error
	}{
		{"missing email", "", "password123", domain.ErrEmailRequired},
		{"missing password", "testuser@example.com", "", domain.ErrPasswordRequired},
		{"bad format", "testuser", "password123", domain.ErrEmailFormatInvalid},
		{"unknown email", "nobody@example.com", "password123", domain.ErrEmailNotRegistered},
		{"wrong password", "testuser@example.com", "wrongpassword", domain.ErrPasswordInvalid},
		{"unknown email with long password", "nobody@example.com", strings.Repeat("x", 73), domain.ErrEmailNotRegistered},
		{"long password", "testuser@example.com", strings.Repeat("x", 73), domain.ErrPasswordInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(tokens.issued) != 0 {
		t.Fatalf("expected no token issued on failure")
	}
}

func TestAuthService_Login_TokenError(t *testing.T) {
	users := newMemUsers()
	svc, tokens := newTestAuthService(users, newStubImages(), AuthOptions{})
	if _, err := svc.Register(context.Background(), validRegistration()); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	tokens.err = errors.New("signing failed")

	_, err := svc.Login(context.Background(), "testuser@example.com", "password123")
	var de *domain.Error
	if err == nil || errors.As(err, &de) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
