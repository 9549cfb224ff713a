package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localserve/localserve-api/internal/domain"
)

// ---------- Mocks ----------

type memServiceRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Service
	listed int
}

func newMemServiceRepo() *memServiceRepo {
	return &memServiceRepo{nextID: 1, byID: make(map[int64]*domain.Service)}
}

func (m *memServiceRepo) Create(_ context.Context, req *domain.CreateServiceRequest) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.Name == req.Name {
			return nil, domain.ErrConflict
		}
	}
	svc := &domain.Service{
		ID:          m.nextID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Frequencies: req.Frequencies,
		Unit:        req.Unit,
		Category:    req.Category,
		MaxQuantity: req.MaxQuantity,
		IsActive:    true,
	}
	m.nextID++
	m.byID[svc.ID] = svc
	c := *svc
	return &c, nil
}

func (m *memServiceRepo) FindByID(_ context.Context, id int64) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.byID[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, nil
}

func (m *memServiceRepo) List(_ context.Context) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listed++
	var out []domain.Service
	for _, s := range m.byID {
		out = append(out, *s)
	}
	return out, nil
}

func (m *memServiceRepo) SearchByName(_ context.Context, name string) ([]domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Service
	for _, s := range m.byID {
		if s.Name == name {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memServiceRepo) Update(_ context.Context, id int64, req *domain.UpdateServiceRequest) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.Price != nil {
		s.Price = *req.Price
	}
	c := *s
	return &c, nil
}

func (m *memServiceRepo) SetActive(_ context.Context, id int64, active bool) (*domain.Service, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	s.IsActive = active
	c := *s
	return &c, nil
}

func (m *memServiceRepo) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type memCatalogCache struct {
	mu          sync.Mutex
	list        []domain.Service
	populated   bool
	invalidated int
}

func (m *memCatalogCache) GetList(_ context.Context) ([]domain.Service, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.populated {
		return nil, false
	}
	return m.list, true
}

func (m *memCatalogCache) SetList(_ context.Context, services []domain.Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = services
	m.populated = true
}

func (m *memCatalogCache) Invalidate(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = nil
	m.populated = false
	m.invalidated++
}

// ---------- Tests ----------

func milkRequest() *domain.CreateServiceRequest {
	return &domain.CreateServiceRequest{
		Name:        "Milk Delivery",
		Price:       30,
		Frequencies: []string{domain.FrequencyDaily},
		Category:    domain.CategoryBeverage,
	}
}

func TestCatalogList(t *testing.T) {
	t.Run("populates the cache on a miss and serves from it afterwards", func(t *testing.T) {
		repo := newMemServiceRepo()
		cache := &memCatalogCache{}
		svc := NewCatalogService(repo, cache, nil)

		_, err := svc.Create(context.Background(), milkRequest())
		require.NoError(t, err)

		first, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, first, 1)
		assert.Equal(t, 1, repo.listed)

		second, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, second, 1)
		assert.Equal(t, 1, repo.listed, "second list should hit the cache")
	})

	t.Run("works without a cache", func(t *testing.T) {
		repo := newMemServiceRepo()
		svc := NewCatalogService(repo, nil, nil)

		_, err := svc.List(context.Background())
		require.NoError(t, err)
	})
}

func TestCatalogWritesInvalidateCache(t *testing.T) {
	repo := newMemServiceRepo()
	cache := &memCatalogCache{}
	svc := NewCatalogService(repo, cache, nil)

	created, err := svc.Create(context.Background(), milkRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	newPrice := 35.0
	_, err = svc.Update(context.Background(), created.ID, &domain.UpdateServiceRequest{Price: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)

	_, err = svc.SetActive(context.Background(), created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 3, cache.invalidated)

	err = svc.Delete(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, cache.invalidated)
}

func TestCatalogCreate(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		svc := NewCatalogService(newMemServiceRepo(), nil, nil)

		created, err := svc.Create(context.Background(), &domain.CreateServiceRequest{
			Name:        "Water Can",
			Price:       50,
			Frequencies: []string{domain.FrequencyWeekly},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryOther, created.Category)
		assert.Equal(t, "per item", created.Unit)
		assert.Equal(t, 5, created.MaxQuantity)
		assert.True(t, created.IsActive)
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		svc := NewCatalogService(newMemServiceRepo(), nil, nil)

		_, err := svc.Create(context.Background(), milkRequest())
		require.NoError(t, err)

		_, err = svc.Create(context.Background(), milkRequest())
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("invalid frequency", func(t *testing.T) {
		svc := NewCatalogService(newMemServiceRepo(), nil, nil)

		_, err := svc.Create(context.Background(), &domain.CreateServiceRequest{
			Name:        "Milk Delivery",
			Price:       30,
			Frequencies: []string{"hourly"},
		})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestCatalogGet(t *testing.T) {
	svc := NewCatalogService(newMemServiceRepo(), nil, nil)

	_, err := svc.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCatalogUpdate(t *testing.T) {
	t.Run("unknown id", func(t *testing.T) {
		svc := NewCatalogService(newMemServiceRepo(), nil, nil)

		newPrice := 35.0
		_, err := svc.Update(context.Background(), 42, &domain.UpdateServiceRequest{Price: &newPrice})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		svc := NewCatalogService(newMemServiceRepo(), nil, nil)

		bad := -1.0
		_, err := svc.Update(context.Background(), 1, &domain.UpdateServiceRequest{Price: &bad})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestCatalogSearch(t *testing.T) {
	svc := NewCatalogService(newMemServiceRepo(), nil, nil)

	_, err := svc.Search(context.Background(), "   ")
	assert.True(t, domain.IsValidationError(err))
}

func TestCatalogSeed(t *testing.T) {
	repo := newMemServiceRepo()
	cache := &memCatalogCache{}
	svc := NewCatalogService(repo, cache, nil)

	seeded, err := svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, seeded)
	assert.Equal(t, 1, cache.invalidated)

	// Re-seeding skips existing names without error.
	seeded, err = svc.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, seeded)
	assert.Equal(t, 1, cache.invalidated)
}
