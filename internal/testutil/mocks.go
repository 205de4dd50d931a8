package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/welth-app/welth/internal/domain/chat"
	"github.com/welth-app/welth/internal/domain/plan"
	"github.com/welth-app/welth/internal/domain/subscription"
	"github.com/welth-app/welth/internal/domain/user"
	"github.com/welth-app/welth/internal/generation"
	"github.com/welth-app/welth/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[string]*user.User
	EmailIndex  map[string]*user.User
	NextID      int
	CreateError error
	GetError    error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[string]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, exists := m.EmailIndex[u.Email]; exists {
		return errors.Conflict("User already registered")
	}
	if u.ID == "" {
		u.ID = fmt.Sprintf("user-%d", m.NextID)
		m.NextID++
	}
	u.CreatedAt = time.Now()
	m.Users[u.ID] = u
	m.EmailIndex[u.Email] = u
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, errors.NotFound("User")
	}
	return u, nil
}

// MockSubscriptionRepository is a mock implementation of subscription.Repository
type MockSubscriptionRepository struct {
	mu          sync.Mutex
	Subs        map[string]*subscription.Subscription
	GetError    error
	ExpireError error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{Subs: make(map[string]*subscription.Subscription)}
}

func (m *MockSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	return m.Subs[userID], nil
}

func (m *MockSubscriptionRepository) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Subs[sub.UserID] = sub
	return nil
}

func (m *MockSubscriptionRepository) ExpireLapsed(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExpireError != nil {
		return 0, m.ExpireError
	}
	var n int64
	for _, sub := range m.Subs {
		if sub.Tier == subscription.TierPremium && sub.CurrentPeriodEnd != nil && !sub.CurrentPeriodEnd.After(now) {
			sub.Tier = subscription.TierFree
			sub.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// SetPremium gives userID an open-ended premium subscription
func (m *MockSubscriptionRepository) SetPremium(userID string) {
	m.Upsert(context.Background(), &subscription.Subscription{UserID: userID, Tier: subscription.TierPremium})
}

// MockChatRepository is a mock implementation of chat.Repository
type MockChatRepository struct {
	mu          sync.Mutex
	Turns       []*chat.Turn
	CreateError error
	ListError   error
	clock       time.Time
}

func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *MockChatRepository) Create(ctx context.Context, t *chat.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if t.ID == "" {
		t.ID = fmt.Sprintf("turn-%d", len(m.Turns)+1)
	}
	if t.CreatedAt.IsZero() {
		m.clock = m.clock.Add(time.Second)
		t.CreatedAt = m.clock
	}
	m.Turns = append(m.Turns, t)
	return nil
}

func (m *MockChatRepository) ListRecent(ctx context.Context, userID string, limit int) ([]*chat.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListError != nil {
		return nil, m.ListError
	}
	var owned []*chat.Turn
	for _, t := range m.Turns {
		if t.UserID == userID {
			owned = append(owned, t)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

// Snapshot returns a copy of the stored turns
func (m *MockChatRepository) Snapshot() []chat.Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]chat.Turn, len(m.Turns))
	for i, t := range m.Turns {
		out[i] = *t
	}
	return out
}

// MockPlanRepository is a mock implementation of plan.Repository
type MockPlanRepository struct {
	mu         sync.Mutex
	Plans      []*plan.Plan
	ReadError  error
	CountError error
}

func NewMockPlanRepository() *MockPlanRepository {
	return &MockPlanRepository{}
}

func (m *MockPlanRepository) Create(ctx context.Context, p *plan.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = fmt.Sprintf("plan-%d", len(m.Plans)+1)
	}
	m.Plans = append(m.Plans, p)
	return nil
}

func (m *MockPlanRepository) Latest(ctx context.Context, userID string) (*plan.Plan, error) {
	plans, err := m.ListByUser(ctx, userID)
	if err != nil || len(plans) == 0 {
		return nil, err
	}
	return plans[0], nil
}

func (m *MockPlanRepository) LatestSummary(ctx context.Context, userID string) (string, bool, error) {
	p, err := m.Latest(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if p == nil {
		return "", false, nil
	}
	return p.Summary, true, nil
}

func (m *MockPlanRepository) ListByUser(ctx context.Context, userID string) ([]*plan.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadError != nil {
		return nil, m.ReadError
	}
	var owned []*plan.Plan
	for _, p := range m.Plans {
		if p.UserID == userID {
			owned = append(owned, p)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool { return owned[i].CreatedAt.After(owned[j].CreatedAt) })
	return owned, nil
}

func (m *MockPlanRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	plans, err := m.ListByUser(ctx, userID)
	return len(plans), err
}

// FakeGenerator replays fixed chunks and records the last request
type FakeGenerator struct {
	mu       sync.Mutex
	Chunks   []string
	Err      error
	StartErr error
	// Block, when non-nil, is waited on before each chunk is sent
	Block    chan struct{}
	Requests []generation.Request
}

func (f *FakeGenerator) Stream(ctx context.Context, req generation.Request) (<-chan generation.Chunk, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	f.mu.Unlock()

	if f.StartErr != nil {
		return nil, f.StartErr
	}

	out := make(chan generation.Chunk)
	go func() {
		defer close(out)
		for _, c := range f.Chunks {
			if f.Block != nil {
				select {
				case <-f.Block:
				case <-ctx.Done():
					return
				}
			}
			if !generation.Send(ctx, out, generation.Chunk{Text: c}) {
				return
			}
		}
		if f.Err != nil {
			generation.Send(ctx, out, generation.Chunk{Err: f.Err})
		}
	}()
	return out, nil
}

// LastRequest returns the most recent request
func (f *FakeGenerator) LastRequest() (generation.Request, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Requests) == 0 {
		return generation.Request{}, false
	}
	return f.Requests[len(f.Requests)-1], true
}
