package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/payment"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

// In-memory fakes used by the handler tests. Each test wires a gin engine
// with only the routes and middleware under test.

type memUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return &errors.ErrConflict{Message: "email already registered"}
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return user, nil
}

type memSessionRepo struct {
	sessions map[string]*domain.Session
}

func (r *memSessionRepo) Create(_ context.Context, session *domain.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.sessions[session.TokenHash] = session
	return nil
}

func (r *memSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	session, ok := r.sessions[tokenHash]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return nil, &errors.ErrNotFound{Resource: "session", ID: "token"}
	}
	return session, nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for hash, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, hash)
		}
	}
	return nil
}

type memProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func (r *memProductRepo) Create(_ context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return product, nil
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := map[uuid.UUID]*domain.Product{}
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func (r *memProductRepo) List(_ context.Context, _, _ int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *memProductRepo) UpdateStock(_ context.Context, id uuid.UUID, delta int) error {
	product, ok := r.products[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	if product.Stock+delta < 0 {
		return &errors.ErrConflict{Message: "insufficient stock"}
	}
	product.Stock += delta
	return nil
}

type memOrderRepo struct {
	orders map[uuid.UUID]*domain.Order
}

func (r *memOrderRepo) Create(_ context.Context, order *domain.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	r.orders[order.ID] = order
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return order, nil
}

func (r *memOrderRepo) GetByProviderSessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, order := range r.orders {
		if order.ProviderSessionID == sessionID {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: sessionID}
}

func (r *memOrderRepo) ListByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID != nil && *order.UserID == userID {
			out = append(out, order)
		}
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *memOrderRepo) ListAll(_ context.Context, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		out = append(out, order)
	}
	sortByCreatedDesc(out)
	return out, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return order, nil
}

func sortByCreatedDesc(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type memWebhookEventRepo struct {
	events map[string]*domain.WebhookEvent
}

func (r *memWebhookEventRepo) Insert(_ context.Context, event *domain.WebhookEvent) (bool, error) {
	if _, exists := r.events[event.ProviderSessionID]; exists {
		return false, nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.events[event.ProviderSessionID] = event
	return true, nil
}

func (r *memWebhookEventRepo) AttachOrder(_ context.Context, providerSessionID string, orderID uuid.UUID) error {
	if event, ok := r.events[providerSessionID]; ok {
		event.OrderID = &orderID
	}
	return nil
}

func (r *memWebhookEventRepo) Delete(_ context.Context, providerSessionID string) error {
	delete(r.events, providerSessionID)
	return nil
}

// memCartStore is a process-local stand-in for the redis cart store. Set
// notifies subscribers the way the redis store publishes on its channel.
type memCartStore struct {
	mu    sync.Mutex
	carts map[string]*domain.Cart
	subs  map[string][]chan *domain.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{
		carts: map[string]*domain.Cart{},
		subs:  map[string][]chan *domain.Cart{},
	}
}

func (s *memCartStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.carts[sessionID]; ok {
		return cart, nil
	}
	return domain.NewCart(sessionID), nil
}

func (s *memCartStore) Set(_ context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.SessionID] = cart
	for _, ch := range s.subs[cart.SessionID] {
		select {
		case ch <- cart:
		default:
		}
	}
	return nil
}

func (s *memCartStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

func (s *memCartStore) Subscribe(_ context.Context, sessionID string) (<-chan *domain.Cart, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan *domain.Cart, 4)
	s.subs[sessionID] = append(s.subs[sessionID], ch)
	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		kept := s.subs[sessionID][:0]
		for _, sub := range s.subs[sessionID] {
			if sub != ch {
				kept = append(kept, sub)
			}
		}
		s.subs[sessionID] = kept
	}
	return ch, cancel, nil
}

func (s *memCartStore) subscriberCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs[sessionID])
}

func (s *memCartStore) closeSubscribers(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs[sessionID] {
		close(ch)
	}
	s.subs[sessionID] = nil
}

// memProvider implements the provider client slice the handlers use
type memProvider struct {
	sessions map[string]*payment.CheckoutSession
}

func (p *memProvider) CreateCheckoutSession(_ context.Context, req *payment.CreateSessionRequest) (*payment.CheckoutSession, error) {
	session := &payment.CheckoutSession{
		ID:        "cs_" + uuid.NewString(),
		URL:       "https://pay.example.com/cs",
		Status:    "open",
		Currency:  req.Currency,
		LineItems: req.LineItems,
		Metadata:  req.Metadata,
	}
	for _, line := range req.LineItems {
		session.AmountTotal += line.UnitAmount * int64(line.Quantity)
	}
	p.sessions[session.ID] = session
	return session, nil
}

func (p *memProvider) GetSession(_ context.Context, sessionID string) (*payment.CheckoutSession, error) {
	session, ok := p.sessions[sessionID]
	if !ok {
		return nil, &errors.ErrUpstream{Operation: "get session", Message: "session not found", ClientAttributable: true}
	}
	return session, nil
}

type testEnv struct {
	repos    *repository.Repositories
	users    *memUserRepo
	sessions *memSessionRepo
	products *memProductRepo
	orders   *memOrderRepo
	webhooks *memWebhookEventRepo
	carts    *memCartStore
	provider *memProvider
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	users := &memUserRepo{users: map[uuid.UUID]*domain.User{}}
	sessions := &memSessionRepo{sessions: map[string]*domain.Session{}}
	products := &memProductRepo{products: map[uuid.UUID]*domain.Product{}}
	orders := &memOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
	webhooks := &memWebhookEventRepo{events: map[string]*domain.WebhookEvent{}}

	return &testEnv{
		repos: &repository.Repositories{
			User:         users,
			Session:      sessions,
			Product:      products,
			Order:        orders,
			WebhookEvent: webhooks,
		},
		users:    users,
		sessions: sessions,
		products: products,
		orders:   orders,
		webhooks: webhooks,
		carts:    newMemCartStore(),
		provider: &memProvider{sessions: map[string]*payment.CheckoutSession{}},
		logger:   zap.NewNop(),
	}
}

// login registers the user in the fakes and returns a bearer token for it
func (e *testEnv) login(user *domain.User) string {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	e.users.users[user.ID] = user

	token := uuid.NewString() + uuid.NewString()
	e.sessions.sessions[middleware.HashToken(token)] = &domain.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: middleware.HashToken(token),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return token
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func init() {
	gin.SetMode(gin.TestMode)
}
