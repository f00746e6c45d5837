package shared

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/notesweb/internal/notesapi"
	"github.com/2beens/notesweb/internal/telemetry/tracing"
	"github.com/2beens/notesweb/internal/views"
	"github.com/2beens/notesweb/pkg"
)

const defaultErrorMessage = "Note not found"

type sharedNotesApi interface {
	GetShared(ctx context.Context, shareToken string) (*notesapi.Note, error)
}

type Handler struct {
	api      sharedNotesApi
	renderer *views.Renderer
}

func NewHandler(api sharedNotesApi, renderer *views.Renderer) *Handler {
	return &Handler{
		api:      api,
		renderer: renderer,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/shared/{shareToken}", handler.HandleGet).Methods("GET").Name("shared-note")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.shared.get")
	defer span.End()

	shareToken := pkg.PathVar(r, "shareToken")
	note, err := handler.api.GetShared(ctx, shareToken)
	if err != nil {
		log.Debugf("get shared note [%s]: %s", shareToken, err)
		span.SetStatus(codes.Error, "shared-note-unavailable")
		message, statusCode := errorMessage(err)
		handler.render(w, views.SharedPage{Error: message}, statusCode)
		return
	}

	span.SetStatus(codes.Ok, "ok")
	handler.render(w, views.SharedPage{Note: note}, http.StatusOK)
}

// errorMessage picks the backend provided detail when there is one.
func errorMessage(err error) (string, int) {
	statusCode := http.StatusBadGateway
	if errors.Is(err, notesapi.ErrNoteNotFound) || errors.Is(err, notesapi.ErrEmptyID) {
		statusCode = http.StatusNotFound
	}

	var apiErr *notesapi.ApiError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, statusCode
	}
	return defaultErrorMessage, statusCode
}

func (handler *Handler) render(w http.ResponseWriter, page views.SharedPage, statusCode int) {
	if err := handler.renderer.RenderShared(w, page, statusCode); err != nil {
		log.Errorf("render shared note: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
