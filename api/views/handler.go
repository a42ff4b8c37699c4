package views

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kilianp07/occupancy/core/occupancy"
)

// Viewer builds views for a selection.
type Viewer interface {
	View(ctx context.Context, sel occupancy.Selection, pin occupancy.Pin) occupancy.View
}

// NewHandler returns an HTTP handler exposing the dashboard view via
// GET /api/occupancy. It accepts the dashboard query parameters plus an
// optional pin=<line>.
func NewHandler(svc Viewer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q := r.URL.Query()
		sel := occupancy.SelectionFromQuery(q)
		var pin occupancy.Pin
		if line := q.Get("pin"); line != "" {
			pin = occupancy.Pin{Enabled: true, Line: line}
		}
		v := svc.View(r.Context(), sel, pin)
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}
