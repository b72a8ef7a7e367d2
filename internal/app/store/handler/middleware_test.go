package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homenest/internal/app/store/entity"
	"homenest/internal/app/store/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter(jwtManager *util.JWTManager) *gin.Engine {
	m := NewAuthMiddleware(jwtManager)

	r := gin.New()
	r.GET("/protected", m.Authenticate(), func(c *gin.Context) {
		userID, _ := c.Get("user_id")
		c.JSON(http.StatusOK, gin.H{"user_id": userID.(uuid.UUID).String()})
	})
	r.GET("/admin", m.Authenticate(), m.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func bearerToken(t *testing.T, jwtManager *util.JWTManager, role entity.Role) (string, uuid.UUID) {
	t.Helper()

	user := &entity.User{ID: uuid.New(), Name: "Asha", Email: "asha@example.com", Role: role}
	token, err := jwtManager.GenerateToken(user)
	require.NoError(t, err)
	return token, user.ID
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	router := authTestRouter(util.NewJWTManager("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	router := authTestRouter(util.NewJWTManager("test-secret", time.Hour))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	expired := util.NewJWTManager("test-secret", -time.Minute)
	router := authTestRouter(expired)

	token, _ := bearerToken(t, expired, entity.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	router := authTestRouter(jwtManager)

	token, userID := bearerToken(t, jwtManager, entity.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestRequireAdmin_UserForbidden(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	router := authTestRouter(jwtManager)

	token, _ := bearerToken(t, jwtManager, entity.RoleUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAdmin_AdminAllowed(t *testing.T) {
	jwtManager := util.NewJWTManager("test-secret", time.Hour)
	router := authTestRouter(jwtManager)

	token, _ := bearerToken(t, jwtManager, entity.RoleAdmin)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
