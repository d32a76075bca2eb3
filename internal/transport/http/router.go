package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"media-choice-service/internal/app"
	"media-choice-service/internal/choice"
	"media-choice-service/internal/domain"
)

var validate = validator.New()

// RouterConfig carries what NewRouter needs besides the service.
type RouterConfig struct {
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter mounts the websocket endpoint and the host REST surface.
func NewRouter(service *app.WidgetService, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(logger), middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", NewWSHandler(service, logger).ServeWS)

	h := &restHandler{service: service}
	r.Route("/api/questions/{questionID}/learners/{learnerID}", func(lr chi.Router) {
		lr.Get("/state", h.getState)
		lr.Put("/state", h.putState)
		lr.Get("/result", h.getResult)
		lr.Get("/report", h.getReport)
		lr.Post("/reset", h.reset)
	})
	return r
}

type restHandler struct {
	service *app.WidgetService
}

type stateResponse struct {
	Answers  []int  `json:"answers"`
	Response string `json:"response"`
}

// saveStateRequest accepts either the index list or the wire string.
type saveStateRequest struct {
	Answers  []int  `json:"answers" validate:"omitempty,dive,gte=0"`
	Response string `json:"response"`
}

func (h *restHandler) getState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.State(r.Context(), chi.URLParam(r, "questionID"), chi.URLParam(r, "learnerID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stateResponse{Answers: state.Answers, Response: choice.FormatIndexes(state.Answers)})
}

func (h *restHandler) putState(w http.ResponseWriter, r *http.Request) {
	var req saveStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	answers := req.Answers
	if req.Response != "" {
		parsed, err := choice.ParseIndexes(req.Response)
		if err != nil {
			respondError(w, err)
			return
		}
		answers = parsed
	}
	if answers == nil {
		answers = []int{}
	}
	questionID, learnerID := chi.URLParam(r, "questionID"), chi.URLParam(r, "learnerID")
	if err := h.service.SaveState(r.Context(), questionID, learnerID, domain.State{Answers: answers}); err != nil {
		respondError(w, err)
		return
	}
	h.getState(w, r)
}

func (h *restHandler) getResult(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Result(r.Context(), chi.URLParam(r, "questionID"), chi.URLParam(r, "learnerID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *restHandler) getReport(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Report(r.Context(), chi.URLParam(r, "questionID"), chi.URLParam(r, "learnerID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (h *restHandler) reset(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Reset(r.Context(), chi.URLParam(r, "questionID"), chi.URLParam(r, "learnerID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrWidgetNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidState):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrSolutionsDisabled), errors.Is(err, domain.ErrRetryDisabled):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNoAnswer):
		code = http.StatusConflict
	}
	respondJSON(w, code, map[string]string{"error": err.Error()})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
