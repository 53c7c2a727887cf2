package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coursemaster/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	// TokenCookie carries the session token for browser clients.
	TokenCookie = "token"
	TokenTTL    = 7 * 24 * time.Hour

	identityKey = "identity"
)

var errMissingToken = errors.New("missing token")

// Identity is the authenticated caller.
type Identity struct {
	Email string
	Role  models.Role
}

// GenerateJWT generates a JWT token for the user
func GenerateJWT(secret, email string, role models.Role) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"role":  string(role),
		"iat":   now.Unix(),               // issued at
		"exp":   now.Add(TokenTTL).Unix(), // expiry 7d
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates tokenString and returns the identity it carries.
func ParseJWT(secret, tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Check if the token method is valid
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token payload")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, errors.New("invalid token payload")
	}
	role, _ := claims["role"].(string)
	return &Identity{Email: email, Role: models.Role(role)}, nil
}

// tokenFromRequest reads the bearer header first, then the token cookie.
func tokenFromRequest(c *fiber.Ctx) (string, error) {
	if authHeader := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authHeader, "Bearer ") {
		if tokenString := strings.TrimSpace(authHeader[len("Bearer "):]); tokenString != "" {
			return tokenString, nil
		}
	}
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie, nil
	}
	return "", errMissingToken
}

// JWTMiddleware rejects requests without a credential (401) or with one that
// does not verify (403), and stores the Identity for later handlers.
func JWTMiddleware(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := tokenFromRequest(c)
		if err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized access", nil)
		}

		identity, err := ParseJWT(secret, tokenString)
		if err != nil {
			return JsonResponse(c, fiber.StatusForbidden, false, "Forbidden access", nil)
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// GetIdentity returns the identity stored by JWTMiddleware.
func GetIdentity(c *fiber.Ctx) *Identity {
	identity, _ := c.Locals(identityKey).(*Identity)
	return identity
}

// SetTokenCookie issues the session cookie.
func SetTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    token,
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
		MaxAge:   int(TokenTTL / time.Second),
	})
}

func ClearTokenCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     TokenCookie,
		Value:    "",
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteNoneMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}
