package middleware

import (
	"net/http"
	"os"
	"strings"

	"procurement-backend/internal/model"
	"procurement-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // development fallback, release mode panics above
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// authenticate validates the JWT from the access_token cookie or the
// Authorization header and stores the subject and role on the context.
// Returns false after writing the error response when validation fails.
func authenticate(c *gin.Context) bool {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return false
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return false
	}

	userRole, ok := claims["role"].(string)
	if !ok || !model.ValidRole(userRole) {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return false
	}

	c.Set("userID", claims["sub"])
	c.Set("userRole", userRole)
	return true
}

// RequireAuth validates the JWT without any capability check. Used for
// endpoints every authenticated user may call (me, notifications).
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequireCapability validates the JWT and checks the user's role against
// the static role-capability table. All listed capabilities must be
// granted. ADMIN passes every check.
func RequireCapability(caps ...model.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			return
		}

		role := c.GetString("userRole")
		for _, cap := range caps {
			if !model.RoleHasCapability(role, cap) {
				c.AbortWithStatusJSON(http.StatusForbidden,
					response.Error(http.StatusForbidden, "Access denied: missing capability '"+string(cap)+"'"))
				return
			}
		}

		c.Next()
	}
}

// CapabilitiesForRole returns the capability codes granted to a role, for
// the /me endpoint.
func CapabilitiesForRole(role string) []string {
	if role == model.RoleAdmin {
		all := make([]string, 0)
		seen := map[model.Capability]bool{}
		for _, caps := range model.RoleCapabilities {
			for _, cap := range caps {
				if !seen[cap] {
					seen[cap] = true
					all = append(all, string(cap))
				}
			}
		}
		return all
	}
	caps := model.RoleCapabilities[role]
	codes := make([]string, 0, len(caps))
	for _, cap := range caps {
		codes = append(codes, string(cap))
	}
	return codes
}
