package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func swaggerRouter(cfg SwaggerConfig, jwt gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/swagger/*any", SwaggerProtection(cfg, jwt), func(c *gin.Context) {
		c.String(http.StatusOK, "docs")
	})
	return r
}

// httptest.NewRequest uses 192.0.2.1 as the remote address.
func TestSwaggerProtection(t *testing.T) {
	denyAll := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }

	tests := []struct {
		name string
		cfg  SwaggerConfig
		jwt  gin.HandlerFunc
		want int
	}{
		{"disabled", SwaggerConfig{}, nil, http.StatusNotFound},
		{"enabled without restrictions", SwaggerConfig{Enabled: true}, nil, http.StatusOK},
		{"exact ip allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.0.2.1"}}, nil, http.StatusOK},
		{"cidr allowed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.0.2.0/24"}}, nil, http.StatusOK},
		{"ip not listed", SwaggerConfig{Enabled: true, AllowedIPs: []string{"10.0.0.1"}}, nil, http.StatusForbidden},
		{"auth required and rejected", SwaggerConfig{Enabled: true, RequireAuth: true}, denyAll, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			swaggerRouter(tt.cfg, tt.jwt).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestIPAllowed_MappedIPv4(t *testing.T) {
	prefixes := []netip.Prefix{netip.MustParsePrefix("127.0.0.0/8")}

	assert.True(t, ipAllowed("::ffff:127.0.0.1", prefixes))
	assert.False(t, ipAllowed("no-ip", prefixes))
}
