package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/localserve/localserve-api/internal/domain"
	"github.com/localserve/localserve-api/internal/repo"
	"github.com/localserve/localserve-api/pkg/events"
	"github.com/localserve/localserve-api/pkg/logger"
)

type CatalogService interface {
	List(ctx context.Context) ([]domain.Service, error)
	Get(ctx context.Context, id int64) (*domain.Service, error)
	Search(ctx context.Context, name string) ([]domain.Service, error)
	Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error)
	Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error)
	SetActive(ctx context.Context, id int64, active bool) (*domain.Service, error)
	Delete(ctx context.Context, id int64) error
	Seed(ctx context.Context) (int, error)
}

type catalogService struct {
	services repo.ServiceRepository
	cache    repo.CatalogCache
	bus      events.Publisher
}

func NewCatalogService(services repo.ServiceRepository, cache repo.CatalogCache, bus events.Publisher) CatalogService {
	return &catalogService{services: services, cache: cache, bus: bus}
}

func (s *catalogService) List(ctx context.Context) ([]domain.Service, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetList(ctx); ok {
			return cached, nil
		}
	}

	services, err := s.services.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	if s.cache != nil {
		s.cache.SetList(ctx, services)
	}
	return services, nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.services.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}
	return svc, nil
}

func (s *catalogService) Search(ctx context.Context, name string) ([]domain.Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	services, err := s.services.SearchByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to search services: %w", err)
	}
	return services, nil
}

func (s *catalogService) Create(ctx context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc, err := s.services.Create(ctx, req)
	if err != nil {
		if err == domain.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	s.afterWrite(ctx, events.CatalogServiceCreated, svc)
	return svc, nil
}

func (s *catalogService) Update(ctx context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	svc, err := s.services.Update(ctx, id, req)
	if err != nil {
		if err == domain.ErrConflict {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}

	s.afterWrite(ctx, events.CatalogServiceUpdated, svc)
	return svc, nil
}

func (s *catalogService) SetActive(ctx context.Context, id int64, active bool) (*domain.Service, error) {
	svc, err := s.services.SetActive(ctx, id, active)
	if err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}
	if svc == nil {
		return nil, domain.ErrNotFound
	}

	s.afterWrite(ctx, events.CatalogServiceUpdated, svc)
	return svc, nil
}

func (s *catalogService) Delete(ctx context.Context, id int64) error {
	if err := s.services.Delete(ctx, id); err != nil {
		if err == domain.ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to delete service: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.publishEvent(ctx, events.CatalogServiceDeleted, &domain.Service{ID: id})
	return nil
}

// Seed inserts the default catalog, skipping names that already exist.
func (s *catalogService) Seed(ctx context.Context) (int, error) {
	seeded := 0
	for _, req := range domain.DefaultServices() {
		req := req
		req.Normalize()
		if _, err := s.services.Create(ctx, &req); err != nil {
			if err == domain.ErrConflict {
				continue
			}
			return seeded, fmt.Errorf("failed to seed service %q: %w", req.Name, err)
		}
		seeded++
	}

	if seeded > 0 && s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return seeded, nil
}

func (s *catalogService) afterWrite(ctx context.Context, subject string, svc *domain.Service) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	s.publishEvent(ctx, subject, svc)
}

func (s *catalogService) publishEvent(ctx context.Context, subject string, svc *domain.Service) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, subject, events.CatalogServiceEvent{
		ServiceID: svc.ID,
		Name:      svc.Name,
		At:        time.Now(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to publish event", "subject", subject, "error", err)
	}
}
