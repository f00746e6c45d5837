package testinternals

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/2beens/notesweb/internal/notesapi"
)

// NotesBackend is an in-memory stand-in for the notes REST backend, served under /api.
type NotesBackend struct {
	mu       sync.Mutex
	notes    []notesapi.Note
	shares   map[string]string // share token -> note id
	requests []string
	lastID   int

	// ShareBaseURL prefixes the share tokens in share urls, like the real backend does
	ShareBaseURL string
	server       *httptest.Server
}

func NewNotesBackend() *NotesBackend {
	b := &NotesBackend{
		shares:       map[string]string{},
		ShareBaseURL: "http://localhost:3000/shared/",
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/notes", b.handleList).Methods("GET")
	api.HandleFunc("/notes", b.handleCreate).Methods("POST")
	api.HandleFunc("/notes/{id}", b.handleGet).Methods("GET")
	api.HandleFunc("/notes/{id}", b.handleUpdate).Methods("PUT")
	api.HandleFunc("/notes/{id}", b.handleDelete).Methods("DELETE")
	api.HandleFunc("/notes/{id}/share", b.handleShare).Methods("GET")
	api.HandleFunc("/shared/{token}", b.handleShared).Methods("GET")

	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, req.Method+" "+req.URL.EscapedPath())
		b.mu.Unlock()
		r.ServeHTTP(w, req)
	}))

	return b
}

// ApiURL is the base url to give to the notes api client.
func (b *NotesBackend) ApiURL() string {
	return b.server.URL + "/api"
}

func (b *NotesBackend) Close() {
	b.server.Close()
}

func (b *NotesBackend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

func (b *NotesBackend) ResetRequests() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = nil
}

func (b *NotesBackend) Notes() []notesapi.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]notesapi.Note(nil), b.notes...)
}

func (b *NotesBackend) AddNote(title, content string) notesapi.Note {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addNote(title, content)
}

func (b *NotesBackend) addNote(title, content string) notesapi.Note {
	b.lastID++
	note := notesapi.Note{
		ID:        fmt.Sprintf("note-%d", b.lastID),
		Title:     title,
		Content:   content,
		CreatedAt: notesapi.Timestamp{Time: time.Now().UTC().Truncate(time.Second)},
	}
	b.notes = append(b.notes, note)
	return note
}

func (b *NotesBackend) indexOf(id string) int {
	for i := range b.notes {
		if b.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *NotesBackend) handleList(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.notes)
}

func (b *NotesBackend) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid note"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.addNote(req.Title, req.Content))
}

func (b *NotesBackend) handleGet(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(mux.Vars(r)["id"])
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b.notes[i])
}

func (b *NotesBackend) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "invalid note"})
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(mux.Vars(r)["id"])
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	b.notes[i].Title = req.Title
	b.notes[i].Content = req.Content
	b.notes[i].UpdatedAt = notesapi.Timestamp{Time: time.Now().UTC()}
	writeJSON(w, http.StatusOK, b.notes[i])
}

func (b *NotesBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(mux.Vars(r)["id"])
	if i < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	b.notes = append(b.notes[:i], b.notes[i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

func (b *NotesBackend) handleShare(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := mux.Vars(r)["id"]
	if b.indexOf(id) < 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	token := fmt.Sprintf("share-%d", len(b.shares)+1)
	b.shares[token] = id
	writeJSON(w, http.StatusOK, notesapi.ShareLink{
		ShareURL:  b.ShareBaseURL + token,
		ExpiresAt: notesapi.Timestamp{Time: time.Now().UTC().Add(7 * 24 * time.Hour)},
	})
}

func (b *NotesBackend) handleShared(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok := b.shares[mux.Vars(r)["token"]]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	i := b.indexOf(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Shared note was deleted"})
		return
	}
	writeJSON(w, http.StatusOK, b.notes[i])
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}
