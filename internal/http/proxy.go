package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// UpstreamHandler forwards requests that passed the gate to the page rendering service.
// With no upstream configured every unmatched request is a 404.
func UpstreamHandler(upstreamURL string) (gin.HandlerFunc, error) {
	raw := strings.TrimSpace(upstreamURL)
	if raw == "" {
		return func(c *gin.Context) {
			c.Status(http.StatusNotFound)
		}, nil
	}

	target, errParse := url.Parse(raw)
	if errParse != nil {
		return nil, fmt.Errorf("http: parse upstream url: %w", errParse)
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return nil, fmt.Errorf("http: upstream url %q must be http or https", raw)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if errors.Is(err, r.Context().Err()) {
			return
		}
		log.WithError(err).WithField("path", r.URL.Path).Error("upstream request failed")
		w.WriteHeader(http.StatusBadGateway)
	}

	return func(c *gin.Context) {
		proxy.ServeHTTP(c.Writer, c.Request)
	}, nil
}
