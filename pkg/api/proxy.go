package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/joshbakergf/lead-manager-sub001/pkg/clients/rest"
)

// Forwarder relays a raw request to an upstream API with its credentials
type Forwarder interface {
	Forward(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*rest.Response, error)
}

// ProxyRoute exposes one upstream endpoint. Path params in Endpoint
// (":id") are filled from the matching gin route params.
type ProxyRoute struct {
	Method   string
	Path     string
	Endpoint string
}

// CRMProxyRoutes are mounted under /api/crm
var CRMProxyRoutes = []ProxyRoute{
	{Method: http.MethodPost, Path: "/customer/create", Endpoint: "customer/create"},
	{Method: http.MethodGet, Path: "/customer/get", Endpoint: "customer/get"},
	{Method: http.MethodGet, Path: "/customer/search", Endpoint: "customer/search"},
	{Method: http.MethodPost, Path: "/paymentProfile/create", Endpoint: "paymentProfile/create"},
	{Method: http.MethodGet, Path: "/paymentProfile/search", Endpoint: "paymentProfile/search"},
}

// PaymentProxyRoutes are mounted under /api/payments
var PaymentProxyRoutes = []ProxyRoute{
	{Method: http.MethodPost, Path: "/customers", Endpoint: "customers"},
	{Method: http.MethodGet, Path: "/customers/:id", Endpoint: "customers/:id"},
	{Method: http.MethodPost, Path: "/tokens", Endpoint: "tokens"},
	{Method: http.MethodGet, Path: "/tokens/:id", Endpoint: "tokens/:id"},
	{Method: http.MethodPost, Path: "/txns", Endpoint: "txns"},
}

// RegisterProxy mounts routes on group, each forwarding through fwd
func RegisterProxy(group *gin.RouterGroup, fwd Forwarder, routes []ProxyRoute) {
	for _, route := range routes {
		group.Handle(route.Method, route.Path, ProxyHandler(fwd, route))
	}
}

// ProxyHandler forwards the caller's body and query verbatim and wraps the
// upstream reply as {success, data} or {success:false, error}.
func ProxyHandler(fwd Forwarder, route ProxyRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			b, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Error reading request"})
				return
			}
			body = b
		}

		endpoint := resolveEndpoint(route.Endpoint, c)
		resp, err := fwd.Forward(c.Request.Context(), route.Method, endpoint, c.Request.URL.Query(), body)
		if err != nil {
			zap.L().Error("proxy call failed", zap.String("endpoint", endpoint), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}

		if !resp.OK() {
			c.JSON(resp.StatusCode, gin.H{"success": false, "error": upstreamError(resp)})
			return
		}
		c.JSON(resp.StatusCode, gin.H{"success": true, "data": payload(resp.Body)})
	}
}

func resolveEndpoint(tpl string, c *gin.Context) string {
	parts := strings.Split(tpl, "/")
	for i, p := range parts {
		if strings.HasPrefix(p, ":") {
			parts[i] = url.PathEscape(c.Param(p[1:]))
		}
	}
	return strings.Join(parts, "/")
}

// payload keeps JSON bodies as JSON and anything else as a string
func payload(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

func upstreamError(resp *rest.Response) any {
	if p := payload(resp.Body); p != nil {
		return p
	}
	return http.StatusText(resp.StatusCode)
}
