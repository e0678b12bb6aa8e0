package controllers

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/vancetran/medisupply-backend/api/responses"
	"github.com/vancetran/medisupply-backend/pkg/config"
)

var requestsServed atomic.Int64

// CountRequest is middleware feeding the process stats endpoint.
func CountRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestsServed.Add(1)
		next.ServeHTTP(w, r)
	})
}

// Stats reports process-level runtime numbers for operators.
func Stats(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)

		responses.WriteSuccess(w, map[string]any{
			"uptime":          time.Since(startedAt).String(),
			"version":         cfg.App.Version,
			"environment":     cfg.App.Env,
			"goroutines":      runtime.NumGoroutine(),
			"requests_served": requestsServed.Load(),
			"memory": map[string]any{
				"alloc_bytes":       mem.Alloc,
				"total_alloc_bytes": mem.TotalAlloc,
				"sys_bytes":         mem.Sys,
				"num_gc":            mem.NumGC,
			},
		})
	}
}
