package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/api/middleware"
	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubLedgerService struct {
	topUpFn  func(ctx context.Context, userID string, in ports.TopUpInput) error
	donateFn func(ctx context.Context, senderID string, in ports.DonateInput) error
}

func (s *stubLedgerService) TopUp(ctx context.Context, userID string, in ports.TopUpInput) error {
	return s.topUpFn(ctx, userID, in)
}

func (s *stubLedgerService) Donate(ctx context.Context, senderID string, in ports.DonateInput) error {
	return s.donateFn(ctx, senderID, in)
}

type stubRecipeService struct {
	createFn func(ctx context.Context, ownerID string, in ports.CreateRecipeInput) (*domain.Recipe, error)
	listFn   func(ctx context.Context) ([]*domain.Recipe, error)
	getFn    func(ctx context.Context, id string) (*domain.RecipeDetail, error)
}

func (s *stubRecipeService) Create(ctx context.Context, ownerID string, in ports.CreateRecipeInput) (*domain.Recipe, error) {
	return s.createFn(ctx, ownerID, in)
}

func (s *stubRecipeService) List(ctx context.Context) ([]*domain.Recipe, error) {
	return s.listFn(ctx)
}

func (s *stubRecipeService) Get(ctx context.Context, id string) (*domain.RecipeDetail, error) {
	return s.getFn(ctx, id)
}

type stubPostService struct {
	createFn func(ctx context.Context, userID string, in ports.CreatePostInput) (*domain.Post, error)
	listFn   func(ctx context.Context) ([]*domain.PostDetail, error)
}

func (s *stubPostService) Create(ctx context.Context, userID string, in ports.CreatePostInput) (*domain.Post, error) {
	return s.createFn(ctx, userID, in)
}

func (s *stubPostService) List(ctx context.Context) ([]*domain.PostDetail, error) {
	return s.listFn(ctx)
}

type stubUserService struct {
	selfFn    func(ctx context.Context, id string) (*domain.User, error)
	profileFn func(ctx context.Context, id string) (*domain.PublicUser, error)
	finishFn  func(ctx context.Context, id string) error
	rankingFn func(ctx context.Context) ([]domain.PublicUser, error)
}

func (s *stubUserService) Self(ctx context.Context, id string) (*domain.User, error) {
	return s.selfFn(ctx, id)
}

func (s *stubUserService) Profile(ctx context.Context, id string) (*domain.PublicUser, error) {
	return s.profileFn(ctx, id)
}

func (s *stubUserService) FinishRecipe(ctx context.Context, id string) error {
	return s.finishFn(ctx, id)
}

func (s *stubUserService) Ranking(ctx context.Context) ([]domain.PublicUser, error) {
	return s.rankingFn(ctx)
}

type stubPaymentService struct {
	createFn func(ctx context.Context, userID string, amount *int64) (string, error)
}

func (s *stubPaymentService) CreatePaymentIntent(ctx context.Context, userID string, amount *int64) (string, error) {
	return s.createFn(ctx, userID, amount)
}

// newEcho returns an echo instance configured like the real router.
func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func authenticate(c echo.Context, userID string) {
	c.Set(middleware.IdentityKey, domain.Identity{ID: userID, Username: "alice"})
}

type formFile struct {
	field, filename, contentType string
	data                         []byte
}

func multipartContext(t *testing.T, e *echo.Echo, path string, fields map[string]string, files []formFile) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}
