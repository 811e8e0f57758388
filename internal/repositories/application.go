package repositories

import (
	"context"
	"fmt"
	"sync"

	"alfredoptarigan/cv-matcher/internal/models"
)

// ApplicationRepository holds the application records of each session in
// submission order. Records are never updated or removed.
type ApplicationRepository interface {
	Append(ctx context.Context, sessionID string, record models.ApplicationRecord) error
	List(ctx context.Context, sessionID string) ([]models.ApplicationRecord, error)
	Count(ctx context.Context, sessionID string) (int, error)
}

type memoryApplicationRepository struct {
	mu       sync.RWMutex
	sessions map[string][]models.ApplicationRecord
}

// NewMemoryApplicationRepository returns a process-local store; contents are
// lost on restart.
func NewMemoryApplicationRepository() ApplicationRepository {
	return &memoryApplicationRepository{
		sessions: make(map[string][]models.ApplicationRecord),
	}
}

// Append implements ApplicationRepository.
func (r *memoryApplicationRepository) Append(ctx context.Context, sessionID string, record models.ApplicationRecord) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to append application: %w", err)
	}
	if sessionID == "" {
		return fmt.Errorf("failed to append application: session id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[sessionID] = append(r.sessions[sessionID], record)
	return nil
}

// List implements ApplicationRepository. The returned slice is a copy.
func (r *memoryApplicationRepository) List(ctx context.Context, sessionID string) ([]models.ApplicationRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.sessions[sessionID]
	out := make([]models.ApplicationRecord, len(records))
	copy(out, records)
	return out, nil
}

// Count implements ApplicationRepository.
func (r *memoryApplicationRepository) Count(ctx context.Context, sessionID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions[sessionID]), nil
}
