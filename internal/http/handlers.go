package httpapi

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/price-stock-merger/internal/config"
	"github.com/fairyhunter13/price-stock-merger/internal/export"
	"github.com/fairyhunter13/price-stock-merger/internal/model"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
	"github.com/fairyhunter13/price-stock-merger/internal/pipeline"
	"github.com/fairyhunter13/price-stock-merger/internal/ratelimit"
)

//go:embed templates/*.html
var templates embed.FS

// User-facing messages of the form page.
const (
	msgStockFailed   = "Failed to download stock report data."
	msgPriceFailed   = "Failed to download price change data."
	msgProcessFailed = "Processing failed."
	msgUnknownRegion = "Unknown region."
	msgChooseRegion  = "Please choose a region."
	msgShuttingDown  = "The service is shutting down. Please try again shortly."
)

type App struct {
	Cfg      config.Config
	Export   *export.Service
	limiter  *ratelimit.Keyed
	validate *validator.Validate
	page     *template.Template
	closing  atomic.Bool
	started  time.Time
}

// processForm is the form posted by the index page.
type processForm struct {
	Region string `validate:"required,alpha,max=8"`
}

// pageData feeds templates/index.html.
type pageData struct {
	Regions  []model.Region
	Selected string
	Artifact *model.Artifact
	Error    string
}

func NewApp(cfg config.Config, svc *export.Service) *App {
	return &App{
		Cfg:      cfg,
		Export:   svc,
		limiter:  ratelimit.PerInterval(cfg.ProcessRatePerMin, time.Minute, cfg.ProcessBurst),
		validate: validator.New(),
		page:     template.Must(template.ParseFS(templates, "templates/index.html")),
		started:  time.Now(),
	}
}

// StartShutdown makes new process requests fail fast while in-flight runs finish.
func (a *App) StartShutdown() {
	a.closing.Store(true)
}

func (a *App) indexHandler(w http.ResponseWriter, r *http.Request) {
	regions := a.Export.Regions()
	data := pageData{Regions: regions}
	if len(regions) > 0 {
		data.Selected = regions[0].Code
	}
	a.render(w, http.StatusOK, data)
}

func (a *App) processFormHandler(w http.ResponseWriter, r *http.Request) {
	data := pageData{Regions: a.Export.Regions()}
	if a.closing.Load() {
		data.Error = msgShuttingDown
		a.render(w, http.StatusServiceUnavailable, data)
		return
	}
	if err := r.ParseForm(); err != nil {
		data.Error = msgChooseRegion
		a.render(w, http.StatusBadRequest, data)
		return
	}
	form := processForm{Region: strings.ToUpper(strings.TrimSpace(r.PostFormValue("region")))}
	data.Selected = form.Region
	if err := a.validate.Struct(form); err != nil {
		data.Error = msgChooseRegion
		a.render(w, http.StatusBadRequest, data)
		return
	}

	art, err := a.Export.Process(r.Context(), form.Region)
	if err != nil {
		status, msg := formError(err)
		obs.Logger.Warn("process_form_failed",
			"region", form.Region,
			"request_id", RequestIDFromContext(r.Context()),
			"error", err,
		)
		data.Error = msg
		a.render(w, status, data)
		return
	}
	data.Artifact = &art
	a.render(w, http.StatusOK, data)
}

// formError maps a processing error to a status and the message shown on the page.
func formError(err error) (int, string) {
	switch {
	case errors.Is(err, export.ErrUnknownRegion):
		return http.StatusBadRequest, msgUnknownRegion
	case errors.Is(err, pipeline.ErrRetrieval):
		return http.StatusBadGateway, retrievalMessage(err)
	case errors.Is(err, pipeline.ErrParse):
		return http.StatusBadGateway, msgProcessFailed
	default:
		return http.StatusInternalServerError, msgProcessFailed
	}
}

// retrievalMessage names the report that could not be downloaded.
func retrievalMessage(err error) string {
	var re *pipeline.RetrievalError
	if errors.As(err, &re) && re.Source == pipeline.SourcePriceChange {
		return msgPriceFailed
	}
	return msgStockFailed
}

func (a *App) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := a.page.Execute(w, data); err != nil {
		obs.Logger.Error("template_execute_error", "error", err)
	}
}

func (a *App) downloadHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "region")
	art, ok := a.Export.Latest(code)
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "no processed data for region "+code)
		return
	}
	writeCSV(w, art)
}

func writeCSV(w http.ResponseWriter, art model.Artifact) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", contentDisposition(art.FileName))
	w.Header().Set("X-Artifact-Id", art.ID)
	w.Header().Set("X-Row-Count", strconv.Itoa(art.Rows))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(art.CSV)
}

func contentDisposition(name string) string {
	return `attachment; filename="` + name + `"`
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	st := a.Export.Stats()
	m := map[string]any{
		"runs":               st.Runs,
		"runs_succeeded":     st.RunsSucceeded,
		"retrieval_failures": st.RetrievalFailures,
		"parse_failures":     st.ParseFailures,
		"other_failures":     st.OtherFailures,
		"rows_written":       st.RowsWritten,
		"artifacts":          st.Artifacts,
		"limiter_keys":       a.limiter.Len(),
		"uptime_sec":         time.Since(a.started).Seconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(m)
}
