package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory users + ledger
// ---------------------------------------------------------------------------

type memUsers struct {
	mu        sync.Mutex
	byID      map[string]*domain.User
	nextID    int
	createErr error
	attachErr error
	// transferFailAfterDebit simulates a crash between the two writes of a
	// non-transactional store; the in-memory transaction rolls it back.
	transferFailAfterDebit error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *memUsers) seed(u *domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.nextID++
		u.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	r.byID[u.ID] = cloneUser(u)
	return cloneUser(u)
}

func (r *memUsers) balance(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id].Balance
}

func (r *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	for _, u := range r.byID {
		if u.Username == user.Username || u.Email == user.Email {
			r.mu.Unlock()
			return nil, domain.ErrUserAlreadyRegistered
		}
	}
	r.mu.Unlock()
	return r.seed(cloneUser(user)), nil
}

func (r *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUsers) AttachProfileImage(_ context.Context, id, url string) error {
	if r.attachErr != nil {
		return r.attachErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	if !u.ImageState.CanTransitionTo(domain.ImageStateAttached) {
		return domain.ErrImageAlreadyAttached
	}
	u.ProfileImgURL = url
	u.ImageState = domain.ImageStateAttached
	return nil
}

func (r *memUsers) IncrementFinishedRecipe(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.FinishedRecipeCount++
	return nil
}

func (r *memUsers) Ranking(ctx context.Context, limit int) ([]domain.PublicUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.PublicUser, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u.Public())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FinishedRecipeCount != out[j].FinishedRecipeCount {
			return out[i].FinishedRecipeCount > out[j].FinishedRecipeCount
		}
		return out[i].Username < out[j].Username
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUsers) Increment(_ context.Context, userID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Balance += amount
	return nil
}

func (r *memUsers) Decrement(_ context.Context, userID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.decrementLocked(userID, amount)
}

func (r *memUsers) decrementLocked(userID string, amount int64) error {
	u, ok := r.byID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.Balance < amount {
		return domain.ErrInsufficientBalance
	}
	u.Balance -= amount
	return nil
}

// Transfer holds the lock for both writes, standing in for a transaction.
func (r *memUsers) Transfer(_ context.Context, fromID, toID string, amount int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[toID]; !ok {
		return domain.ErrUserNotFound
	}
	if err := r.decrementLocked(fromID, amount); err != nil {
		return err
	}
	if r.transferFailAfterDebit != nil {
		r.byID[fromID].Balance += amount // rollback
		return r.transferFailAfterDebit
	}
	r.byID[toID].Balance += amount
	return nil
}

// ---------------------------------------------------------------------------
// Password hasher / token service
// ---------------------------------------------------------------------------

type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, digest string) bool  { return digest == "hashed:"+plaintext }

type stubTokens struct {
	issued []ports.TokenClaims
	err    error
}

func (s *stubTokens) Issue(c ports.TokenClaims) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, c)
	return "token-for-" + c.UserID, nil
}

func (s *stubTokens) Verify(token string) (*ports.TokenClaims, error) {
	id, ok := strings.CutPrefix(token, "token-for-")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}
	return &ports.TokenClaims{UserID: id}, nil
}

// ---------------------------------------------------------------------------
// Image store
// ---------------------------------------------------------------------------

type stubImages struct {
	mu       sync.Mutex
	uploaded []string // folder/name
	failFor  map[string]error
}

func newStubImages() *stubImages {
	return &stubImages{failFor: make(map[string]error)}
}

func (s *stubImages) Upload(_ context.Context, folder, name string, _ *domain.Image) (string, error) {
	key := folder + "/" + name
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failFor[key]; ok {
		return "", err
	}
	s.uploaded = append(s.uploaded, key)
	return "https://cdn.example.com/" + key, nil
}

var errUpload = errors.New("object storage unavailable")

func testImage() *domain.Image {
	return &domain.Image{Filename: "dish.jpeg", ContentType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}
}

// ---------------------------------------------------------------------------
// Recipes / posts
// ---------------------------------------------------------------------------

type memRecipes struct {
	mu        sync.Mutex
	byID      map[string]*domain.Recipe
	nextID    int
	attachErr error
}

func newMemRecipes() *memRecipes {
	return &memRecipes{byID: make(map[string]*domain.Recipe)}
}

func cloneRecipe(r *domain.Recipe) *domain.Recipe {
	clone := *r
	clone.Ingredients = append([]string(nil), r.Ingredients...)
	clone.Instructions = append([]domain.Instruction(nil), r.Instructions...)
	return &clone
}

func (m *memRecipes) Create(_ context.Context, r *domain.Recipe) (*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	clone := cloneRecipe(r)
	clone.ID = fmt.Sprintf("recipe-%d", m.nextID)
	m.byID[clone.ID] = clone
	return cloneRecipe(clone), nil
}

func (m *memRecipes) FindAll(_ context.Context) ([]*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Recipe, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, cloneRecipe(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRecipes) FindByID(_ context.Context, id string) (*domain.Recipe, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	return cloneRecipe(r), nil
}

func (m *memRecipes) FindDetail(ctx context.Context, id string) (*domain.RecipeDetail, error) {
	r, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.RecipeDetail{Recipe: *r}, nil
}

func (m *memRecipes) AttachImages(_ context.Context, id string, images ports.RecipeImages) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return domain.ErrRecipeNotFound
	}
	if !r.ImageState.CanTransitionTo(domain.ImageStateAttached) {
		return domain.ErrImageAlreadyAttached
	}
	r.ImgURL = images.ImgURL
	for i, url := range images.Instructions {
		r.Instructions[i].ImgURL = url
	}
	r.ImageState = domain.ImageStateAttached
	return nil
}

type memPosts struct {
	mu     sync.Mutex
	byID   map[string]*domain.Post
	nextID int
}

func newMemPosts() *memPosts {
	return &memPosts{byID: make(map[string]*domain.Post)}
}

func (m *memPosts) Create(_ context.Context, p *domain.Post) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	clone := *p
	clone.ID = fmt.Sprintf("post-%d", m.nextID)
	m.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (m *memPosts) AttachImage(_ context.Context, id, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return errors.New("post not found")
	}
	if !p.ImageState.CanTransitionTo(domain.ImageStateAttached) {
		return domain.ErrImageAlreadyAttached
	}
	p.ImgURL = url
	p.ImageState = domain.ImageStateAttached
	return nil
}

func (m *memPosts) FindAll(_ context.Context) ([]*domain.PostDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.PostDetail, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, &domain.PostDetail{Post: *p})
	}
	return out, nil
}

func (m *memPosts) get(id string) domain.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.byID[id]
}

// ---------------------------------------------------------------------------
// Idempotency guard / ranking cache / payment processor
// ---------------------------------------------------------------------------

type guardEntry struct {
	done        bool
	fingerprint string
}

type memGuard struct {
	mu        sync.Mutex
	entries   map[string]guardEntry
	claimErr  error
	released  []string
	completed []string
}

func newMemGuard() *memGuard {
	return &memGuard{entries: make(map[string]guardEntry)}
}

// hold simulates a request that claimed key and has not finished yet.
func (g *memGuard) hold(scope, userID, key, fingerprint string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[scope+":"+userID+":"+key] = guardEntry{fingerprint: fingerprint}
}

func (g *memGuard) Claim(_ context.Context, scope, userID, key, fingerprint string) (ports.ClaimResult, error) {
	if g.claimErr != nil {
		return ports.ClaimAcquired, g.claimErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	k := scope + ":" + userID + ":" + key
	e, ok := g.entries[k]
	switch {
	case !ok:
		g.entries[k] = guardEntry{fingerprint: fingerprint}
		return ports.ClaimAcquired, nil
	case e.fingerprint != fingerprint:
		return ports.ClaimMismatch, nil
	case e.done:
		return ports.ClaimCompleted, nil
	default:
		return ports.ClaimInProgress, nil
	}
}

func (g *memGuard) Complete(_ context.Context, scope, userID, key, fingerprint string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := scope + ":" + userID + ":" + key
	g.entries[k] = guardEntry{done: true, fingerprint: fingerprint}
	g.completed = append(g.completed, k)
	return nil
}

func (g *memGuard) Release(_ context.Context, scope, userID, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	k := scope + ":" + userID + ":" + key
	delete(g.entries, k)
	g.released = append(g.released, k)
	return nil
}

type memRankingCache struct {
	users       []domain.PublicUser
	ok          bool
	getErr      error
	sets        int
	invalidates int
}

func (c *memRankingCache) Get(_ context.Context) ([]domain.PublicUser, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	return c.users, c.ok, nil
}

func (c *memRankingCache) Set(_ context.Context, users []domain.PublicUser) error {
	c.users, c.ok = users, true
	c.sets++
	return nil
}

func (c *memRankingCache) Invalidate(_ context.Context) error {
	c.users, c.ok = nil, false
	c.invalidates++
	return nil
}

type stubProcessor struct {
	got    ports.PaymentIntentRequest
	secret string
	err    error
}

func (p *stubProcessor) CreatePaymentIntent(_ context.Context, req ports.PaymentIntentRequest) (string, error) {
	p.got = req
	return p.secret, p.err
}

func amount(v int64) *int64 { return &v }
