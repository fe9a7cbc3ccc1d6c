package requestcontext

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext(t *testing.T) {
	clientIP, err := WithClientIP(WithClientIPConfig{TrustedProxiesIP: []string{"10.0.0.0/8"}})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ProxyHeader: fiber.HeaderXForwardedFor})
	app.Use(New(WithRequestId(), clientIP, WithCaller("X-Caller")))
	app.Get("/", func(c *fiber.Ctx) error {
		caller, ok := GetCaller(c.UserContext())
		return c.JSON(fiber.Map{
			"id":     GetRequestId(c.UserContext()),
			"ip":     GetClientIP(c.UserContext()),
			"caller": caller.Hex(),
			"ok":     ok,
		})
	})

	do := func(t *testing.T, headers map[string]string) (*http.Response, map[string]any) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		return resp, body
	}

	t.Run("caller", func(t *testing.T) {
		resp, body := do(t, map[string]string{
			"X-Caller":        "0x00000000000000000000000000000000000000ad",
			"X-Request-ID":    "req-1",
			"X-Forwarded-For": "203.0.113.7, 10.0.0.1",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, common.HexToAddress("0xad").Hex(), body["caller"])
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "req-1", body["id"])
		assert.Equal(t, "203.0.113.7", body["ip"])
	})

	t.Run("no_caller", func(t *testing.T) {
		resp, body := do(t, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["ok"])
		assert.NotEmpty(t, body["id"])
	})

	t.Run("malformed_caller", func(t *testing.T) {
		resp, body := do(t, map[string]string{"X-Caller": "alice"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "X-Caller is not an address", body["error"])
	})
}

func TestWithClientIPInvalidRange(t *testing.T) {
	_, err := WithClientIP(WithClientIPConfig{TrustedProxiesIP: []string{"10.0.0.0"}})
	assert.Error(t, err)
}
