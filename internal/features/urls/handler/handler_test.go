package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"packtrack/internal/features/tracking/domain"
	"packtrack/internal/features/urls/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	urls []string
}

func (r *memRepo) List() ([]string, error) {
	return append([]string{}, r.urls...), nil
}

func (r *memRepo) Add(url string) error {
	r.urls = append(r.urls, url)
	return nil
}

func (r *memRepo) Remove(pattern string) ([]string, error) {
	kept := []string{}
	removed := []string{}
	for _, url := range r.urls {
		if strings.Contains(url, pattern) {
			removed = append(removed, url)
		} else {
			kept = append(kept, url)
		}
	}
	r.urls = kept
	return removed, nil
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*domain.CacheEntry, error) { return nil, nil }

func (nopCache) Put(context.Context, string, *domain.CacheEntry) error { return nil }

func (nopCache) Evict(context.Context, string) error { return nil }

func setupApp(repo *memRepo) *fiber.App {
	handler := NewURLHandler(service.NewURLService(repo, nopCache{}))

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Get("/urls", handler.List)
	app.Post("/urls", handler.Add)
	app.Delete("/urls", handler.Remove)
	return app
}

func TestURLHandler_List(t *testing.T) {
	app := setupApp(&memRepo{urls: []string{"https://one.example", "https://two.example"}})

	req := httptest.NewRequest("GET", "/urls", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		URLs []string `json:"urls"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, result.URLs)
}

func TestURLHandler_Add(t *testing.T) {
	repo := &memRepo{}
	app := setupApp(repo)

	req := httptest.NewRequest("POST", "/urls", strings.NewReader(`{"url": "https://one.example"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, []string{"https://one.example"}, repo.urls)
}

func TestURLHandler_Add_EmptyURL(t *testing.T) {
	app := setupApp(&memRepo{})

	req := httptest.NewRequest("POST", "/urls", strings.NewReader(`{"url": ""}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Equal(t, "test-ray-id", errResp.RayID)
}

func TestURLHandler_Add_BadBody(t *testing.T) {
	app := setupApp(&memRepo{})

	req := httptest.NewRequest("POST", "/urls", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestURLHandler_Remove(t *testing.T) {
	repo := &memRepo{urls: []string{"https://one.example", "https://two.example"}}
	app := setupApp(repo)

	req := httptest.NewRequest("DELETE", "/urls?pattern=one", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Removed []string `json:"removed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, []string{"https://one.example"}, result.Removed)
	assert.Equal(t, []string{"https://two.example"}, repo.urls)
}

func TestURLHandler_Remove_MissingPattern(t *testing.T) {
	app := setupApp(&memRepo{urls: []string{"https://one.example"}})

	req := httptest.NewRequest("DELETE", "/urls", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.Contains(t, errResp.Message, "pattern query parameter is required")
}
