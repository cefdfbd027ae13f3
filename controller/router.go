package controller

import (
	"strings"

	"oasis/auth"
	"oasis/service"

	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type RouteInfo struct {
	Method        string
	Path          string
	HandlerFunc   gin.HandlerFunc
	Authenticated bool
	RequiredRoles []auth.Role
}

func SetRoutes(r *gin.Engine, db *gorm.DB, cacheStore persistence.CacheStore, publisher *service.SubmissionPublisher) {
	api := r.Group("/api")
	routes := make([]RouteInfo, 0)
	routes = append(routes, setupTeamController(db)...)
	routes = append(routes, setupChallengeController(db, cacheStore, publisher)...)
	routes = append(routes, setupJudgeController(db, publisher)...)
	routes = append(routes, setupLeaderboardController(db, cacheStore)...)
	routes = append(routes, setupOauthController(db)...)
	routes = append(routes, setupAdminController(db)...)
	routes = append(routes, setupSubmissionController(db)...)
	for _, route := range routes {
		handlerfuncs := make([]gin.HandlerFunc, 0)
		if route.Authenticated {
			handlerfuncs = append(handlerfuncs, AuthMiddleware(route.RequiredRoles))
		}
		handlerfuncs = append(handlerfuncs, route.HandlerFunc)
		api.Handle(route.Method, route.Path, handlerfuncs...)
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie("auth"); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func AuthMiddleware(roles []auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		token, err := auth.ParseToken(tokenString)
		if err != nil || !token.Valid {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		claims := &auth.Claims{}
		claims.FromJWTClaims(token.Claims)
		if err := claims.Valid(); err != nil {
			c.JSON(401, gin.H{"error": "Unauthenticated"})
			c.Abort()
			return
		}
		c.Set("claims", claims)
		if len(roles) == 0 {
			c.Next()
			return
		}
		for _, requiredRole := range roles {
			if claims.Role == requiredRole {
				c.Next()
				return
			}
		}
		c.JSON(403, gin.H{"error": "Unauthorized"})
		c.Abort()
	}
}

func getClaims(c *gin.Context) *auth.Claims {
	value, ok := c.Get("claims")
	if !ok {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
