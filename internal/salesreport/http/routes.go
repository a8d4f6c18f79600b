package salesreporthttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
)

// BasePath is where the report endpoints are mounted.
const BasePath = "/reports/sales-target-achievement"

// MountRoutes registers the report endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(10, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get(BasePath, h.handleReport)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get(BasePath+"/export.csv", h.handleCSV)
		gr.Get(BasePath+"/pdf", h.handlePDF)
	})
}
