package notes

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/2beens/notesweb/internal/flash"
	"github.com/2beens/notesweb/internal/notesapi"
	"github.com/2beens/notesweb/internal/telemetry/metrics"
	"github.com/2beens/notesweb/internal/telemetry/tracing"
	"github.com/2beens/notesweb/internal/views"
	"github.com/2beens/notesweb/pkg"
)

//go:generate mockgen -source=$GOFILE -destination=notes_mocks_test.go -package=notes_test

const (
	FlashCookieName = "notesweb_flash"

	errMsgTitleContentRequired = "title and content are required"
)

type notesApi interface {
	List(ctx context.Context) ([]notesapi.Note, error)
	Get(ctx context.Context, id string) (*notesapi.Note, error)
	Create(ctx context.Context, title, content string) (*notesapi.Note, error)
	Update(ctx context.Context, id, title, content string) (*notesapi.Note, error)
	Delete(ctx context.Context, id string) error
	Share(ctx context.Context, id string) (*notesapi.ShareLink, error)
}

type Handler struct {
	api        notesApi
	flashStore flash.Store
	renderer   *views.Renderer
	metrics    *metrics.Manager
	// share urls from the backend are rewritten to this base, when set
	publicBaseURL string
}

func NewHandler(
	api notesApi,
	flashStore flash.Store,
	renderer *views.Renderer,
	metrics *metrics.Manager,
	publicBaseURL string,
) *Handler {
	return &Handler{
		api:           api,
		flashStore:    flashStore,
		renderer:      renderer,
		metrics:       metrics,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// SetupRoutes mounts the list view routes. Given middlewares are applied to the note mutating routes only.
// The router is expected to match on encoded paths (see mux.Router.UseEncodedPath).
func (handler *Handler) SetupRoutes(r *mux.Router, mutationMiddlewares ...mux.MiddlewareFunc) {
	r.HandleFunc("/", handler.HandleList).Methods("GET").Name("list-notes")
	r.HandleFunc("/notes/{id}/edit", handler.HandleEdit).Methods("GET").Name("edit-note")

	mutationsRouter := r.Methods("POST").Subrouter()
	mutationsRouter.HandleFunc("/notes", handler.HandleSave).Name("save-note")
	mutationsRouter.HandleFunc("/notes/{id}/delete", handler.HandleDelete).Name("delete-note")
	mutationsRouter.HandleFunc("/notes/{id}/share", handler.HandleShare).Name("share-note")
	mutationsRouter.Use(mutationMiddlewares...)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.list")
	defer span.End()

	page := views.ListPage{
		Notes: handler.fetchNotes(ctx),
		Flash: handler.popFlash(ctx, w, r),
	}
	handler.render(w, page, http.StatusOK)
}

func (handler *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.edit")
	defer span.End()

	id := pkg.PathVar(r, "id")
	span.SetAttributes(attribute.String("note.id", id))

	notes := handler.fetchNotes(ctx)
	page := views.ListPage{Notes: notes}
	if note := handler.selectNote(ctx, notes, id); note != nil {
		page.Form = views.NoteForm{
			ID:      note.ID,
			Title:   note.Title,
			Content: note.Content,
		}
	}

	handler.render(w, page, http.StatusOK)
}

func (handler *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.save")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		log.Errorf("save note failed, parse form error: %s", err)
		http.Error(w, "parse form error", http.StatusBadRequest)
		return
	}

	form := views.NoteForm{
		ID:      strings.TrimSpace(r.PostForm.Get("id")),
		Title:   r.PostForm.Get("title"),
		Content: r.PostForm.Get("content"),
	}
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Content) == "" {
		span.SetStatus(codes.Error, "invalid-form")
		form.Error = errMsgTitleContentRequired
		handler.render(w, views.ListPage{
			Form:  form,
			Notes: handler.fetchNotes(ctx),
		}, http.StatusBadRequest)
		return
	}

	if form.Editing() {
		span.SetAttributes(attribute.String("note.id", form.ID))
		if _, err := handler.api.Update(ctx, form.ID, form.Title, form.Content); err != nil {
			log.Errorf("error saving note %s: %s", form.ID, err)
			span.RecordError(err)
		} else {
			handler.metrics.CounterNotesUpdated.Inc()
			log.Tracef("note %s updated", form.ID)
		}
	} else {
		if note, err := handler.api.Create(ctx, form.Title, form.Content); err != nil {
			log.Errorf("error saving new note: %s", err)
			span.RecordError(err)
		} else {
			handler.metrics.CounterNotesCreated.Inc()
			log.Tracef("new note %s created", note.ID)
		}
	}

	redirectToList(w, r)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.delete")
	defer span.End()

	id := pkg.PathVar(r, "id")
	span.SetAttributes(attribute.String("note.id", id))

	if err := handler.api.Delete(ctx, id); err != nil {
		log.Errorf("error deleting note %s: %s", id, err)
		span.RecordError(err)
	} else {
		handler.metrics.CounterNotesDeleted.Inc()
		log.Tracef("note %s deleted", id)
	}

	redirectToList(w, r)
}

func (handler *Handler) HandleShare(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.share")
	defer span.End()

	id := pkg.PathVar(r, "id")
	span.SetAttributes(attribute.String("note.id", id))

	link, err := handler.api.Share(ctx, id)
	if err != nil {
		log.Errorf("error sharing note %s: %s", id, err)
		span.RecordError(err)
		redirectToList(w, r)
		return
	}
	handler.metrics.CounterNotesShared.Inc()

	flashID, err := handler.flashStore.Put(ctx, flash.Message{
		Text:      "Share URL created",
		ShareURL:  rewriteShareURL(handler.publicBaseURL, link.ShareURL),
		ExpiresAt: link.ExpiresAt.Time,
	})
	if err != nil {
		log.Errorf("store share url flash for note %s: %s", id, err)
		span.RecordError(err)
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:     FlashCookieName,
			Value:    flashID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	redirectToList(w, r)
}

// fetchNotes returns the current notes, or an empty list if the backend cannot be reached.
func (handler *Handler) fetchNotes(ctx context.Context) []notesapi.Note {
	notes, err := handler.api.List(ctx)
	if err != nil {
		log.Errorf("error fetching notes: %s", err)
		return []notesapi.Note{}
	}
	return notes
}

// selectNote looks the note up in the fetched list first, then asks the backend for it.
func (handler *Handler) selectNote(ctx context.Context, notes []notesapi.Note, id string) *notesapi.Note {
	for i := range notes {
		if notes[i].ID == id {
			return &notes[i]
		}
	}

	note, err := handler.api.Get(ctx, id)
	if err != nil {
		if errors.Is(err, notesapi.ErrNoteNotFound) {
			log.Debugf("note %s to edit not found", id)
		} else {
			log.Errorf("error fetching note %s to edit: %s", id, err)
		}
		return nil
	}
	return note
}

func (handler *Handler) popFlash(ctx context.Context, w http.ResponseWriter, r *http.Request) *flash.Message {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	// the flash is shown at most once, regardless of the outcome below
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	msg, err := handler.flashStore.Pop(ctx, cookie.Value)
	if err != nil {
		if !errors.Is(err, flash.ErrNotFound) {
			log.Errorf("pop flash %s: %s", cookie.Value, err)
		}
		return nil
	}
	return msg
}

func (handler *Handler) render(w http.ResponseWriter, page views.ListPage, statusCode int) {
	if err := handler.renderer.RenderList(w, page, statusCode); err != nil {
		log.Errorf("render notes list: %s", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func redirectToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// rewriteShareURL moves the path of the share url onto the public base url,
// since the backend does not know under which host the frontend is served.
func rewriteShareURL(publicBaseURL, shareURL string) string {
	if publicBaseURL == "" || shareURL == "" {
		return shareURL
	}

	u, err := url.Parse(shareURL)
	if err != nil {
		log.Warnf("cannot rewrite share url [%s]: %s", shareURL, err)
		return shareURL
	}

	rewritten := strings.TrimRight(publicBaseURL, "/") + u.EscapedPath()
	if u.RawQuery != "" {
		rewritten += "?" + u.RawQuery
	}
	return rewritten
}
