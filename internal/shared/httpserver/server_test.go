package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cristianortiz/harvestBid/internal/shared/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoRoutes struct{}

type echoBody struct {
	Name string `json:"name" validate:"required"`
}

func (echoRoutes) Register(r fiber.Router) {
	r.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String())
	})
	r.Post("/echo", func(c *fiber.Ctx) error {
		var body echoBody
		if err := BindJSON(c, &body); err != nil {
			return err
		}
		return c.JSON(body)
	})
	r.Get("/missing", func(c *fiber.Ctx) error {
		return apperr.New(apperr.ErrNotFound, "thing not found")
	})
	r.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("db password leaked in message")
	})
}

func do(t *testing.T, s *Server, req *http.Request) (int, string) {
	t.Helper()
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServerRoutesAndErrors(t *testing.T) {
	s := NewServer(prometheus.NewRegistry(), echoRoutes{})

	code, body := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusForbidden, code)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(UserHeader, id.String())
	code, body = do(t, s, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, id.String(), body)

	code, body = do(t, s, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"thing not found"}`, body)

	code, body = do(t, s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.NotContains(t, body, "password")
}

func TestBindJSONValidates(t *testing.T) {
	s := NewServer(nil, echoRoutes{})

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":""}`))
	req.Header.Set("Content-Type", "application/json")
	code, _ := do(t, s, req)
	assert.Equal(t, http.StatusBadRequest, code)

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"okra"}`))
	req.Header.Set("Content-Type", "application/json")
	code, body := do(t, s, req)
	require.Equal(t, http.StatusOK, code)
	var got echoBody
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, "okra", got.Name)

	code, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, code)
}
