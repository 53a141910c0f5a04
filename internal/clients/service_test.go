package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilequote/tilequote/internal/platform/httpx"
)

type memoryRepo struct {
	items map[uuid.UUID]Client
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[uuid.UUID]Client{}}
}

func (m *memoryRepo) Create(_ context.Context, c Client) (Client, error) {
	for _, existing := range m.items {
		if strings.EqualFold(existing.Name, c.Name) && existing.Phone == c.Phone {
			return Client{}, fmt.Errorf("insert client: %w", httpx.ErrDuplicate)
		}
	}
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Get(_ context.Context, id uuid.UUID) (Client, error) {
	c, ok := m.items[id]
	if !ok {
		return Client{}, fmt.Errorf("get client: %w", httpx.ErrNotFound)
	}
	return c, nil
}

func (m *memoryRepo) List(_ context.Context, filter ListFilter) ([]Client, int, error) {
	var out []Client
	for _, c := range m.items {
		if filter.Search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(filter.Search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *memoryRepo) Update(_ context.Context, c Client) (Client, error) {
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func TestCreateNormalizesAndValidates(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	c, err := svc.Create(ctx, Input{Name: "  Mrs   Bello ", Email: " Bello@Example.com "})
	require.NoError(t, err)
	assert.Equal(t, "Mrs Bello", c.Name)
	assert.Equal(t, "bello@example.com", c.Email)
	assert.NotEqual(t, uuid.Nil, c.ID)

	_, err = svc.Create(ctx, Input{Name: "   "})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(ctx, Input{Name: "mrs bello"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateMissingClient(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Update(context.Background(), uuid.New(), Input{Name: "X"})
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestHandlerRoutes(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	r := chi.NewRouter()
	r.Route("/clients", NewHandler(svc, nil).MountRoutes)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/clients", strings.NewReader(`{"name":"Chidi","phone":"0803"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients?search=chi", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total":1`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/not-a-uuid", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/clients/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
