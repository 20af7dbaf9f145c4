package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"golang.org/x/crypto/bcrypt"
)

// AdminRealm is the basic-auth realm advertised in WWW-Authenticate challenges.
const AdminRealm = "Restricted"

// AdminCredentials is the single configured administrator account. When
// PasswordHash is set it takes precedence over Password.
type AdminCredentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// Verify checks a username/password pair in constant time for the plain
// password path and via bcrypt for the hashed one.
func (a AdminCredentials) Verify(user, pass string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.Username)) == 1
	var passOK bool
	if a.PasswordHash != "" {
		passOK = bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(pass)) == nil
	} else {
		passOK = a.Password != "" && subtle.ConstantTimeCompare([]byte(pass), []byte(a.Password)) == 1
	}
	return userOK && passOK
}

// AdminRequired returns basic-auth middleware for admin-only routes. Failures
// respond 401 with a JSON error body and a WWW-Authenticate challenge.
func AdminRequired(creds AdminCredentials) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Realm:      AdminRealm,
		Authorizer: creds.Verify,
		Unauthorized: func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="`+AdminRealm+`"`)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
		},
		ContextUsername: "adminUser",
	})
}

// AdminContext copies the authenticated admin name into the request context
// for logging. It must run after AdminRequired.
func AdminContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, ok := c.Locals("adminUser").(string); ok && strings.TrimSpace(user) != "" {
			c.SetUserContext(context.WithValue(c.UserContext(), AdminKey, user))
		}
		return c.Next()
	}
}
