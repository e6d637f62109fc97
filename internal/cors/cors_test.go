package cors_test

import (
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/api-proxy/internal/cors"
)

func expectCORS(h http.Header) {
	Expect(h.Values("Access-Control-Allow-Origin")).To(Equal([]string{"*"}))
	Expect(h.Values("Access-Control-Allow-Credentials")).To(Equal([]string{"true"}))
	Expect(h.Values("Access-Control-Allow-Methods")).To(Equal([]string{"PUT, GET, POST, DELETE, PATCH, OPTIONS"}))
	Expect(h.Values("Access-Control-Allow-Headers")).To(Equal([]string{
		"DNT,Keep-Alive,User-Agent,X-Requested-With,If-Modified-Since,Cache-Control,Content-Type,Range,Authorization,X-Api-Key,x-hasura-admin-secret,X-Sign",
	}))
}

var _ = Describe("CORS", func() {
	Describe("Decorate", func() {
		It("should set all four headers on an empty header map", func() {
			h := http.Header{}
			cors.Decorate(h)
			expectCORS(h)
			Expect(h).To(HaveLen(4))
		})

		It("should overwrite values set by a backend", func() {
			h := http.Header{}
			h.Set("Access-Control-Allow-Origin", "https://example.com")
			h.Add("Access-Control-Allow-Methods", "GET")
			h.Add("Access-Control-Allow-Methods", "POST")

			cors.Decorate(h)
			expectCORS(h)
		})

		It("should leave unrelated headers alone", func() {
			h := http.Header{}
			h.Set("Content-Type", "application/json")
			h.Set("X-Backend", "ugc-gateway")

			cors.Decorate(h)
			Expect(h.Get("Content-Type")).To(Equal("application/json"))
			Expect(h.Get("X-Backend")).To(Equal("ugc-gateway"))
		})
	})

	Describe("Preflight", func() {
		It("should respond 200 with an empty body and CORS headers", func() {
			req := httptest.NewRequest(http.MethodOptions, "/api/anything/at/all", nil)
			req.Header.Set("Access-Control-Request-Method", "POST")
			w := httptest.NewRecorder()

			cors.Preflight.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.Len()).To(BeZero())
			expectCORS(w.Header())
		})
	})
})
