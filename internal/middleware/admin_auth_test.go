package middleware

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func basicHeader(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestAdminCredentials_Verify(t *testing.T) {
	t.Parallel()
	hash, err := bcrypt.GenerateFromPassword([]byte("hashed-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	plain := AdminCredentials{Username: "admin", Password: "secret"}
	hashed := AdminCredentials{Username: "admin", Password: "ignored", PasswordHash: string(hash)}

	assert.True(t, plain.Verify("admin", "secret"))
	assert.False(t, plain.Verify("admin", "wrong"))
	assert.False(t, plain.Verify("root", "secret"))
	assert.False(t, AdminCredentials{Username: "admin"}.Verify("admin", ""))

	assert.True(t, hashed.Verify("admin", "hashed-secret"))
	assert.False(t, hashed.Verify("admin", "ignored"))
}

func TestAdminRequired(t *testing.T) {
	t.Parallel()
	app := fiber.New()
	app.Get("/admin", AdminRequired(AdminCredentials{Username: "admin", Password: "secret"}), AdminContext(),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"admin": c.UserContext().Value(AdminKey)})
		})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no credentials", "", fiber.StatusUnauthorized},
		{"wrong password", basicHeader("admin", "nope"), fiber.StatusUnauthorized},
		{"valid credentials", basicHeader("admin", "secret"), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			var payload map[string]any
			require.NoError(t, json.Unmarshal(body, &payload))

			if tt.wantStatus == fiber.StatusUnauthorized {
				assert.Equal(t, `Basic realm="Restricted"`, resp.Header.Get("WWW-Authenticate"))
				assert.NotEmpty(t, payload["error"])
			} else {
				assert.Equal(t, "admin", payload["admin"])
			}
		})
	}
}
