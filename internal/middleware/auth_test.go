package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/elearning/internal/entity"
	"anoa.com/elearning/internal/middleware"
	userRepo "anoa.com/elearning/internal/modules/user/repository"
	"anoa.com/elearning/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, subject string, key string, ttl time.Duration) string {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func setupRouter(t *testing.T) (*gin.Engine, *entity.User, *entity.User) {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	teacher := &entity.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: entity.RoleTeacher}
	student := &entity.User{FullName: "Bob", Email: "bob@example.com", PasswordHash: "x", Role: entity.RoleStudent}
	require.NoError(t, db.Create(teacher).Error)
	require.NoError(t, db.Create(student).Error)

	auth := middleware.NewAuthMiddleware(userRepo.NewUserRepository(db), secret)

	router := gin.New()
	router.GET("/me", auth.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.GetString("user_id"), "role": c.GetString("user_role")})
	})
	router.POST("/teach", auth.RequireAuth(), auth.RequireRole(entity.RoleTeacher, entity.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, teacher, student
}

func do(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	router, teacher, _ := setupRouter(t)

	w := do(router, http.MethodGet, "/me", sign(t, teacher.ID.String(), secret, time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"teacher"`)

	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/me", sign(t, teacher.ID.String(), "other", time.Hour)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/me", sign(t, teacher.ID.String(), secret, -time.Minute)).Code)
	assert.Equal(t, http.StatusUnauthorized, do(router, http.MethodGet, "/me", sign(t, "not-a-uuid", secret, time.Hour)).Code)
}

func TestRequireRole(t *testing.T) {
	router, teacher, student := setupRouter(t)

	assert.Equal(t, http.StatusNoContent, do(router, http.MethodPost, "/teach", sign(t, teacher.ID.String(), secret, time.Hour)).Code)
	assert.Equal(t, http.StatusForbidden, do(router, http.MethodPost, "/teach", sign(t, student.ID.String(), secret, time.Hour)).Code)
}
