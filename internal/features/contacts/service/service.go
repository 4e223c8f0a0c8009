package service

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/features/contacts/domain"
	"storefront-api/internal/features/contacts/ports"
)

// ContactServiceImpl implements ports.ContactService.
type ContactServiceImpl struct {
	repo ports.ContactRepository
	now  func() time.Time
}

func NewContactService(repo ports.ContactRepository) *ContactServiceImpl {
	return &ContactServiceImpl{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and stores a contact form message.
func (s *ContactServiceImpl) Submit(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	if err := c.Normalize(); err != nil {
		return nil, err
	}
	c.ID = ""
	c.CreatedAt = s.now()

	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, fmt.Errorf("service: failed to save contact: %w", err)
	}
	return &c, nil
}

func (s *ContactServiceImpl) List(ctx context.Context) ([]*domain.Contact, error) {
	contacts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *ContactServiceImpl) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
