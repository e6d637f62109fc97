package cors

import "net/http"

const (
	AllowOrigin      = "*"
	AllowCredentials = "true"
	AllowMethods     = "PUT, GET, POST, DELETE, PATCH, OPTIONS"
	AllowHeaders     = "DNT,Keep-Alive,User-Agent,X-Requested-With,If-Modified-Since,Cache-Control,Content-Type,Range,Authorization,X-Api-Key,x-hasura-admin-secret,X-Sign"
)

// Browsers reject credentialed requests against a wildcard origin. The
// combination is kept as-is because existing clients depend on these exact
// values.
var headers = [...][2]string{
	{"Access-Control-Allow-Origin", AllowOrigin},
	{"Access-Control-Allow-Credentials", AllowCredentials},
	{"Access-Control-Allow-Methods", AllowMethods},
	{"Access-Control-Allow-Headers", AllowHeaders},
}

// Decorate overwrites the CORS headers on h, replacing any values a backend
// may have set.
func Decorate(h http.Header) {
	for _, kv := range headers {
		h.Set(kv[0], kv[1])
	}
}

// Preflight answers OPTIONS requests with 200, an empty body and the CORS
// headers. It never contacts a backend.
var Preflight http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	Decorate(w.Header())
	w.WriteHeader(http.StatusOK)
})
