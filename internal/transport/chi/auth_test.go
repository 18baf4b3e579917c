package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authTarget() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestBearerAuthDisabledWithoutKeys(t *testing.T) {
	h := BearerAuthMiddleware(nil)(authTarget())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/smlouvy", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBearerAuthValidKey(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(authTarget())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/smlouvy", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestBearerAuthRejections(t *testing.T) {
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic secret"},
		{"invalid key", "Bearer wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := BearerAuthMiddleware([]string{"secret"})(authTarget())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets/smlouvy", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d", rec.Code)
			}
		})
	}
}

func TestBearerAuthExemptPaths(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(authTarget())

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, rec.Code)
		}
	}
}
