package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig) *gin.Engine {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return router
}

func getDocs(router *gin.Engine, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remote
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSwaggerProtection(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		w := getDocs(swaggerRouter(SwaggerConfig{}), "10.0.0.1:1")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
	})

	t.Run("enabled without allow list", func(t *testing.T) {
		w := getDocs(swaggerRouter(SwaggerConfig{Enabled: true}), "203.0.113.9:1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	router := swaggerRouter(SwaggerConfig{Enabled: true, AllowedIPs: []string{"127.0.0.1", "10.1.0.0/16", "bogus"}})

	t.Run("exact ip allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, getDocs(router, "127.0.0.1:5000").Code)
	})

	t.Run("cidr allowed", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, getDocs(router, "10.1.42.7:5000").Code)
	})

	t.Run("outsider denied", func(t *testing.T) {
		w := getDocs(router, "192.168.1.1:5000")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
	})
}

func TestIsIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("192.168.0.0/24")
	ips := []net.IP{net.ParseIP("::1")}
	nets := []*net.IPNet{network}

	assert.True(t, isIPAllowed(net.ParseIP("::1"), ips, nets))
	assert.True(t, isIPAllowed(net.ParseIP("192.168.0.200"), ips, nets))
	assert.False(t, isIPAllowed(net.ParseIP("192.168.1.1"), ips, nets))
	assert.False(t, isIPAllowed(nil, ips, nets))
}
