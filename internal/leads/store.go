package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"corysite/internal/db"
	"corysite/internal/models"
)

// Store persists captured leads.
type Store interface {
	Append(ctx context.Context, lead *models.Lead) error
	List(ctx context.Context, limit int) ([]models.Lead, error)
	ListUnforwarded(ctx context.Context, limit int) ([]models.Lead, error)
	MarkForwarded(ctx context.Context, id uuid.UUID) error
}

// MemoryStore keeps leads in process. Used when no database is configured
// and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	leads []models.Lead
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append stores a copy of lead and assigns its ID and timestamp.
func (s *MemoryStore) Append(ctx context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lead.ID = uuid.New()
	lead.CreatedAt = time.Now()
	s.leads = append(s.leads, *lead)
	return nil
}

// List returns up to limit leads, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Lead, 0, len(s.leads))
	for i := len(s.leads) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.leads[i])
	}
	return out, nil
}

// ListUnforwarded returns up to limit undelivered leads, oldest first.
func (s *MemoryStore) ListUnforwarded(ctx context.Context, limit int) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Lead
	for _, l := range s.leads {
		if l.ForwardedAt != nil {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MarkForwarded records delivery. The first timestamp wins.
func (s *MemoryStore) MarkForwarded(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID != id {
			continue
		}
		if s.leads[i].ForwardedAt == nil {
			now := time.Now()
			s.leads[i].ForwardedAt = &now
		}
		return nil
	}
	return db.ErrLeadNotFound
}

// DBStore adapts the Postgres layer to Store.
type DBStore struct {
	db *db.DB
}

// NewDBStore creates a Store backed by database.
func NewDBStore(database *db.DB) *DBStore {
	return &DBStore{db: database}
}

func (s *DBStore) Append(ctx context.Context, lead *models.Lead) error {
	return s.db.InsertLead(ctx, lead)
}

func (s *DBStore) List(ctx context.Context, limit int) ([]models.Lead, error) {
	return s.db.ListLeads(ctx, limit)
}

func (s *DBStore) ListUnforwarded(ctx context.Context, limit int) ([]models.Lead, error) {
	return s.db.ListUnforwardedLeads(ctx, limit)
}

func (s *DBStore) MarkForwarded(ctx context.Context, id uuid.UUID) error {
	return s.db.MarkLeadForwarded(ctx, id)
}
