// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Galion Labs

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// CheckHTTPMethod is registered as the router's MethodNotAllowed handler.
// Chi answers 405 when a path matches but the method does not; that confirms
// the route exists, which the auth and QR endpoints must not do. This handler
// answers 404 instead, so an unsupported method is indistinguishable from an
// unknown path.
//
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		rctx := chi.NewRouteContext()
		if router.Match(rctx, r.Method, r.URL.Path) {
			// The method is actually routable; let the normal pipeline run.
			router.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}
}
