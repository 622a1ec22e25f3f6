package proxy

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

// forwardedHeaders are the only client headers passed on to the backend.
// Dashboard credentials must never reach it.
var forwardedHeaders = []string{"Content-Type", "Accept", "Accept-Language", "X-Request-ID"}

// BufferBody reads and returns the request body, then restores it on the request
// so it can be read again by the handler.
func BufferBody(r *http.Request) ([]byte, error) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	return bodyBytes, nil
}

// ToBackend proxies the request to path on the backend at baseURL.
// bodyBytes is the original request body (already consumed by the handler).
// authorize sets the backend credentials on the outgoing request.
func ToBackend(w http.ResponseWriter, r *http.Request, log *slog.Logger, baseURL, path string, bodyBytes []byte, authorize func(*http.Request)) {
	target, err := url.Parse(baseURL)
	if err != nil {
		log.Error("invalid backend url", "error", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = strings.TrimRight(target.Path, "/") + path
			pr.Out.URL.RawQuery = r.URL.RawQuery
			pr.Out.Host = target.Host

			// Restore the original body
			pr.Out.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			pr.Out.ContentLength = int64(len(bodyBytes))

			pr.Out.Header = make(http.Header)
			for _, key := range forwardedHeaders {
				if value := r.Header.Get(key); value != "" {
					pr.Out.Header.Set(key, value)
				}
			}
			if authorize != nil {
				authorize(pr.Out)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, _ *http.Request, err error) {
			log.Error("backend proxy failed", "path", path, "error", err)
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	proxy.ServeHTTP(w, r)
}
