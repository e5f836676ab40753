package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Asmaa63/Shop-Website-sub001/internal/domain"
	"github.com/Asmaa63/Shop-Website-sub001/internal/payment"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/pkg/errors"
)

// In-memory repository fakes shared by the service tests.

type fakeProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: map[uuid.UUID]*domain.Product{}}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

func (r *fakeProductRepo) Create(_ context.Context, product *domain.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	r.products[product.ID] = product
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "product", ID: id.String()}
	}
	return product, nil
}

func (r *fakeProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Product, error) {
	out := map[uuid.UUID]*domain.Product{}
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out[id] = product
		}
	}
	return out, nil
}

func (r *fakeProductRepo) List(_ context.Context, _, _ int) ([]*domain.Product, error) {
	var out []*domain.Product
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id uuid.UUID, delta int) error {
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

type fakeOrderRepo struct {
	orders     map[uuid.UUID]*domain.Order
	failCreate bool
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[uuid.UUID]*domain.Order{}}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *domain.Order) error {
	if r.failCreate {
		return &errors.ErrPersistence{Operation: "insert order", Err: &errors.ErrConflict{Message: "duplicate provider session"}}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	order.UpdatedAt = order.CreatedAt
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return order, nil
}

func (r *fakeOrderRepo) GetByProviderSessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	for _, order := range r.orders {
		if order.ProviderSessionID == sessionID {
			return order, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: sessionID}
}

func (r *fakeOrderRepo) ListByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		if order.UserID != nil && *order.UserID == userID {
			out = append(out, order)
		}
	}
	sortOrders(out)
	return out, nil
}

func (r *fakeOrderRepo) ListAll(_ context.Context, _, _ int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, order := range r.orders {
		out = append(out, order)
	}
	sortOrders(out)
	return out, nil
}

func (r *fakeOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) (*domain.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return order, nil
}

func sortOrders(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
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

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "user", ID: email}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "user", ID: id.String()}
	}
	return user, nil
}

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, session *domain.Session) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.sessions[session.TokenHash] = session
	return nil
}

func (r *fakeSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*domain.Session, error) {
	session, ok := r.sessions[tokenHash]
	if !ok || session.ExpiresAt.Before(time.Now()) {
		return nil, &errors.ErrNotFound{Resource: "session", ID: "token"}
	}
	return session, nil
}

func (r *fakeSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	for hash, session := range r.sessions {
		if session.ID == id {
			delete(r.sessions, hash)
		}
	}
	return nil
}

type fakeWebhookEventRepo struct {
	events map[string]*domain.WebhookEvent
}

func newFakeWebhookEventRepo() *fakeWebhookEventRepo {
	return &fakeWebhookEventRepo{events: map[string]*domain.WebhookEvent{}}
}

func (r *fakeWebhookEventRepo) Insert(_ context.Context, event *domain.WebhookEvent) (bool, error) {
	if _, exists := r.events[event.ProviderSessionID]; exists {
		return false, nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.events[event.ProviderSessionID] = event
	return true, nil
}

func (r *fakeWebhookEventRepo) AttachOrder(_ context.Context, providerSessionID string, orderID uuid.UUID) error {
	if event, ok := r.events[providerSessionID]; ok {
		event.OrderID = &orderID
	}
	return nil
}

func (r *fakeWebhookEventRepo) Delete(_ context.Context, providerSessionID string) error {
	delete(r.events, providerSessionID)
	return nil
}

// fakeProvider implements ProviderClient against canned sessions
type fakeProvider struct {
	sessions map[string]*payment.CheckoutSession
	created  []*payment.CreateSessionRequest
}

func newFakeProvider(sessions ...*payment.CheckoutSession) *fakeProvider {
	p := &fakeProvider{sessions: map[string]*payment.CheckoutSession{}}
	for _, s := range sessions {
		p.sessions[s.ID] = s
	}
	return p
}

func (p *fakeProvider) CreateCheckoutSession(_ context.Context, req *payment.CreateSessionRequest) (*payment.CheckoutSession, error) {
	p.created = append(p.created, req)
	session := &payment.CheckoutSession{
		ID:       "cs_" + uuid.NewString(),
		URL:      "https://pay.example.com/cs",
		Status:   "open",
		Currency: req.Currency,
		Metadata: req.Metadata,
	}
	for _, line := range req.LineItems {
		session.AmountTotal += line.UnitAmount * int64(line.Quantity)
	}
	session.LineItems = req.LineItems
	p.sessions[session.ID] = session
	return session, nil
}

func (p *fakeProvider) GetSession(_ context.Context, sessionID string) (*payment.CheckoutSession, error) {
	session, ok := p.sessions[sessionID]
	if !ok {
		return nil, &errors.ErrUpstream{Operation: "get session", Message: "session not found", ClientAttributable: true}
	}
	return session, nil
}

func newTestRepos(products *fakeProductRepo, orders *fakeOrderRepo, users *fakeUserRepo, webhooks *fakeWebhookEventRepo) *repository.Repositories {
	return &repository.Repositories{
		User:         users,
		Session:      newFakeSessionRepo(),
		Product:      products,
		Order:        orders,
		WebhookEvent: webhooks,
	}
}
