// Package dashboard serves the occupancy dashboard page, its charts and the
// pin and clear-filter actions.
package dashboard

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/core/occupancy"
	"github.com/kilianp07/occupancy/infra/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

// Viewer builds dashboard views. *occupancy.Service implements it.
type Viewer interface {
	View(ctx context.Context, sel occupancy.Selection, pin occupancy.Pin) occupancy.View
	Dataset(ctx context.Context) (model.Snapshot, occupancy.Dataset)
	Today() time.Time
}

// Handler holds the dashboard routes.
type Handler struct {
	svc   Viewer
	store sessions.Store
	log   logger.Logger
	tmpl  *template.Template
}

// NewHandler parses the page template.
func NewHandler(svc Viewer, store sessions.Store, log logger.Logger) (*Handler, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	tmpl, err := template.New("dashboard.html").Funcs(template.FuncMap{
		"fmtTime": func(t time.Time) string { return t.Format("02/01/2006 15:04") },
	}).ParseFS(templateFS, "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, store: store, log: log, tmpl: tmpl}, nil
}

// Routes registers the dashboard endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.page)
	r.Get("/charts/{name}", h.chart)
	r.Get("/report.pdf", h.report)
	r.Post("/pin", h.togglePin)
	r.Post("/clear", h.clear)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// NewRouter returns a chi mux with the standard middleware stack and the
// dashboard routes. extra lets callers mount more handlers, such as the JSON API.
func NewRouter(h *Handler, log logger.Logger, extra ...func(chi.Router)) http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		RequestLogger(log),
		middleware.Recoverer,
		middleware.Compress(5),
	)
	h.Routes(r)
	for _, fn := range extra {
		fn(r)
	}
	return r
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	View      occupancy.View
	Query     string
	Charts    map[string]template.URL
	Report    template.URL
	Dates     []option
	LineTypes []option
	TripTypes []option
	Lines     []option
}

func (h *Handler) view(r *http.Request) occupancy.View {
	sel := occupancy.SelectionFromQuery(r.URL.Query())
	return h.svc.View(r.Context(), sel, loadPin(h.store, r))
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	v := h.view(r)
	data := newPageData(v)
	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.log.Errorf("render dashboard: %v", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func newPageData(v occupancy.View) pageData {
	d := pageData{View: v, Query: v.Selection.Query().Encode(), Charts: map[string]template.URL{}}
	for _, name := range []string{ChartStatus, ChartLineTypes, ChartHistory} {
		// The query is built from parsed values only.
		d.Charts[name] = template.URL("/charts/" + name + "?" + d.Query)
	}
	d.Report = template.URL("/report.pdf?" + d.Query)
	for _, day := range v.Options.Dates {
		d.Dates = append(d.Dates, option{
			Value:    day.Format(occupancy.QueryDateLayout),
			Label:    day.Format(model.DateLayout),
			Selected: day.Equal(v.Selection.Date),
		})
	}
	d.LineTypes = options(v.Options.LineTypes, v.Selection.LineTypes)
	d.TripTypes = options(v.Options.TripTypes, v.Selection.TripTypes)
	var pinned []string
	if v.Pin.Line != "" {
		pinned = []string{v.Pin.Line}
	}
	d.Lines = options(v.Options.Lines, pinned)
	return d
}

func options(all, selected []string) []option {
	out := make([]option, 0, len(all))
	for _, v := range all {
		out = append(out, option{Value: v, Label: v, Selected: slices.Contains(selected, v)})
	}
	return out
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	switch name {
	case ChartStatus, ChartLineTypes, ChartHistory:
	default:
		http.NotFound(w, r)
		return
	}
	v := h.view(r)
	var buf bytes.Buffer
	if err := renderChart(name, v, &buf); err != nil {
		h.log.Errorf("render chart %s: %v", name, err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := renderReport(h.view(r), &buf); err != nil {
		h.log.Errorf("render report: %v", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="ocupacao.pdf"`)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) togglePin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	pin := loadPin(h.store, r).Toggle(r.PostForm.Get("line"))
	if err := savePin(h.store, w, r, pin); err != nil {
		h.log.Errorf("save session: %v", err)
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	h.log.Debugw("pin toggled", map[string]any{"enabled": pin.Enabled, "line": pin.Line})
	http.Redirect(w, r, dashboardURL(returnSelection(r.PostForm.Get("return"))), http.StatusSeeOther)
}

// clear lands on the default selection. The pin is left as is.
func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	_, ds := h.svc.Dataset(r.Context())
	http.Redirect(w, r, dashboardURL(ds.Cleared(h.svc.Today())), http.StatusSeeOther)
}

// returnSelection reads the selection echoed by a form. Only known
// parameters survive, which keeps the redirect on the dashboard.
func returnSelection(raw string) occupancy.Selection {
	q, err := url.ParseQuery(raw)
	if err != nil {
		return occupancy.Selection{}
	}
	return occupancy.SelectionFromQuery(q)
}

func dashboardURL(sel occupancy.Selection) string {
	if q := sel.Query().Encode(); q != "" {
		return "/?" + q
	}
	return "/"
}
