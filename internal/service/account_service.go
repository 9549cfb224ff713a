package service

import (
	"context"
	"fmt"
	"time"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/repo"
	"github.com/localserve/localserve-api/pkg/events"
	"github.com/localserve/localserve-api/pkg/logger"
)

// AccountService covers profile management plus the admin account surface.
// Role changes live here and nowhere else, so a caller can never escalate
// itself through a profile update.
type AccountService interface {
	Get(ctx context.Context, id int64) (*domain.AccountInfo, error)
	UpdateProfile(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.AccountInfo, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, limit, offset int) ([]domain.AccountInfo, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}

type accountService struct {
	accounts repo.AccountRepository
	bus      events.Publisher
}

func NewAccountService(accounts repo.AccountRepository, bus events.Publisher) AccountService {
	return &accountService{accounts: accounts, bus: bus}
}

func (s *accountService) Get(ctx context.Context, id int64) (*domain.AccountInfo, error) {
	acct, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound
	}
	return acct.ToInfo(), nil
}

func (s *accountService) UpdateProfile(ctx context.Context, id int64, req *domain.UpdateAccountRequest) (*domain.AccountInfo, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	acct, err := s.accounts.UpdateProfile(ctx, id, req)
	if err != nil {
		if err == domain.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound
	}
	return acct.ToInfo(), nil
}

func (s *accountService) Delete(ctx context.Context, id int64) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		if err == domain.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{
			AccountID: id,
			DeletedAt: time.Now(),
		}); err != nil {
			logger.WarnContext(ctx, "failed to publish event", "subject", events.AccountDeleted, "error", err)
		}
	}
	return nil
}

func (s *accountService) List(ctx context.Context, limit, offset int) ([]domain.AccountInfo, error) {
	accounts, err := s.accounts.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	infos := make([]domain.AccountInfo, 0, len(accounts))
	for i := range accounts {
		infos = append(infos, *accounts[i].ToInfo())
	}
	return infos, nil
}

func (s *accountService) UpdateRole(ctx context.Context, id int64, role string) error {
	if !domain.IsValidRole(role) {
		return domain.NewValidationError("role", "must be user or admin")
	}
	if err := s.accounts.UpdateRole(ctx, id, role); err != nil {
		if err == domain.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to update role: %w", err)
	}
	return nil
}
