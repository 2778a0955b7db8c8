package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type pingModule struct{ body string }

func (m pingModule) Name() string { return "ping" }

func (m pingModule) Register(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, m.body) })
}

func TestRegistry_IgnoresDuplicateModules(t *testing.T) {
	logger, hook := test.NewNullLogger()
	engine := gin.New()
	reg := NewRegistry(engine, logger)
	reg.Use(func(c *gin.Context) {
		c.Header("X-Mounted", "api")
		c.Next()
	})
	reg.Add(pingModule{body: "first"})
	reg.Add(pingModule{body: "second"})
	reg.RegisterAll()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, "first", w.Body.String())
	assert.Equal(t, "api", w.Header().Get("X-Mounted"))
	assert.Equal(t, "module already registered", hook.Entries[0].Message)
}
