package middleware

import (
	"log"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"parking_rental/internal/service"
)

const (
	AuthorizationHeaderKey  = "Authorization"
	AuthorizationTypeBearer = "Bearer"
	SubjectKey              = "subject"
	UserRoleKey             = "userRole"
)

type AuthMiddleware struct {
	authService *service.AuthService
}

func NewAuthMiddleware(authService *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate checks the bearer JWT and stores its subject and role in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeaderKey)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || !strings.EqualFold(fields[0], AuthorizationTypeBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		_, claims, err := m.authService.ValidateToken(fields[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token", "details": err.Error()})
			return
		}

		subject, okSubject := claims["sub"].(string)
		role, okRole := claims["role"].(string)
		if !okSubject || !okRole {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is missing subject or role"})
			return
		}

		c.Set(SubjectKey, subject)
		c.Set(UserRoleKey, role)
		c.Next()
	}
}

// AuthorizeRole lets the request through only for one of requiredRoles.
func (m *AuthMiddleware) AuthorizeRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(UserRoleKey)
		if role == "" {
			log.Printf("AuthorizeRole: no role in context, Authenticate must run first")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		if !slices.Contains(requiredRoles, role) {
			log.Printf("AuthorizeRole: role %q denied (requires %v)", role, requiredRoles)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied for role " + role})
			return
		}
		c.Next()
	}
}
