package http

import (
	"errors"
	"net/http"
	"strings"
)

// MethodOverrideParam names the query parameter or form field that tunnels
// PUT and DELETE through HTML form POSTs.
const MethodOverrideParam = "_method"

const multipartMemory = 32 << 20

var overridableMethods = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride rewrites POST requests carrying _method=PUT|PATCH|DELETE.
// The form is parsed while the request is still a POST, since net/http does
// not read DELETE bodies, so handlers and CSRF checks still see the fields.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		var err error
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			err = r.ParseMultipartForm(multipartMemory)
		} else {
			err = r.ParseForm()
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}

		method := r.URL.Query().Get(MethodOverrideParam)
		if method == "" {
			method = r.PostForm.Get(MethodOverrideParam)
		}
		if method = strings.ToUpper(method); overridableMethods[method] {
			r.Method = method
		}

		next.ServeHTTP(w, r)
	})
}

// LimitBody caps request bodies at limit bytes. A non-positive limit leaves
// bodies unrestricted.
func LimitBody(next http.Handler, limit int64) http.Handler {
	if limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
