package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yardimli/learn-with-ai-sub000/internal/models"
	appErrors "github.com/yardimli/learn-with-ai-sub000/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
}

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}

type observerStub struct {
	method string
	path   string
	status int
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	o.method, o.path, o.status = method, path, status
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(handlers...)
	r.GET("/plans/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/plans/p1", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTRequiresBearerToken(t *testing.T) {
	r := newRouter(JWT(validatorStub{claims: &models.JWTClaims{UserID: "u1", Role: models.RoleTeacher}}))

	rec := serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, errorCode(t, rec))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer ").Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "bearer token").Code)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := newRouter(JWT(validatorStub{err: appErrors.Clone(appErrors.ErrUnauthorized, "token expired")}))
	rec := serve(r, "Bearer expired")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTNeverBlocks(t *testing.T) {
	var seen bool
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(OptionalJWT(validatorStub{err: errors.New("bad")}))
	r.GET("/plans/:id", func(c *gin.Context) {
		_, seen = c.Get(ContextUserKey)
		c.Status(http.StatusNoContent)
	})
	assert.Equal(t, http.StatusNoContent, serve(r, "Bearer whatever").Code)
	assert.False(t, seen)
}

func TestRBAC(t *testing.T) {
	teacher := validatorStub{claims: &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher}}
	admin := validatorStub{claims: &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}}
	student := validatorStub{claims: &models.JWTClaims{UserID: "s1", Role: models.RoleStudent}}

	assert.Equal(t, http.StatusForbidden, serve(newRouter(JWT(teacher), CalendarManagers()), "Bearer x").Code)
	assert.Equal(t, http.StatusNoContent, serve(newRouter(JWT(admin), CalendarManagers()), "Bearer x").Code)
	assert.Equal(t, http.StatusNoContent, serve(newRouter(JWT(teacher), CalendarViewers()), "Bearer x").Code)
	assert.Equal(t, http.StatusForbidden, serve(newRouter(JWT(student), CalendarViewers()), "Bearer x").Code)

	rec := serve(newRouter(CalendarViewers()), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	obs := &observerStub{}
	serve(newRouter(Metrics(obs)), "")
	assert.Equal(t, http.MethodGet, obs.method)
	assert.Equal(t, "/plans/:id", obs.path)
	assert.Equal(t, http.StatusNoContent, obs.status)
}

func TestResponseMetaAndCacheHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var meta map[string]interface{}
	r := gin.New()
	r.Use(WithResponseMeta())
	r.GET("/plans/:id", func(c *gin.Context) {
		SetCacheHit(c, true)
		meta = ExtractMeta(c)
		c.Status(http.StatusNoContent)
	})
	rec := serve(r, "")
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	require.NotNil(t, meta)
	assert.Equal(t, true, meta["cache_hit"])
	assert.Contains(t, meta, "processing_time_ms")
}

func TestFeatureGate(t *testing.T) {
	rec := serve(newRouter(FeatureGate("exports", false)), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, appErrors.ErrFeatureDisabled.Code, errorCode(t, rec))

	assert.Equal(t, http.StatusNoContent, serve(newRouter(FeatureGate("exports", true)), "").Code)
}

func TestAuditLogsSuccessfulMutations(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
		c.Next()
	})
	r.POST("/plans/:id/publish", Audit(zap.New(core), models.AuditActionPlanPublish, models.AuditResourceCalendarPlan), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.DELETE("/plans/:id", Audit(zap.New(core), models.AuditActionPlanDelete, models.AuditResourceCalendarPlan), func(c *gin.Context) { c.Status(http.StatusConflict) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/plans/p1/publish", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/plans/p1", nil))

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, models.AuditActionPlanPublish, fields["action"])
	assert.Equal(t, "p1", fields["resource_id"])
	assert.Equal(t, "admin-1", fields["user_id"])
}
