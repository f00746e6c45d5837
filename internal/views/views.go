package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/2beens/notesweb/internal/flash"
	"github.com/2beens/notesweb/internal/notesapi"
	"github.com/2beens/notesweb/pkg"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

const localTimeLayout = "2006-01-02 15:04:05"

type NoteForm struct {
	ID      string
	Title   string
	Content string
	Error   string
}

// Editing tells if the form updates an existing note, rather than creating a new one.
func (f NoteForm) Editing() bool {
	return strings.TrimSpace(f.ID) != ""
}

type ListPage struct {
	Form  NoteForm
	Notes []notesapi.Note
	Flash *flash.Message
}

type SharedPage struct {
	Note  *notesapi.Note
	Error string
}

type Renderer struct {
	listTmpl   *template.Template
	sharedTmpl *template.Template
	location   *time.Location
}

// NewRenderer parses the embedded page templates. Times are shown in the given location,
// or in the local one when nil.
func NewRenderer(location *time.Location) (*Renderer, error) {
	if location == nil {
		location = time.Local
	}

	r := &Renderer{location: location}
	funcs := template.FuncMap{
		"localtime":  r.localTime,
		"pathescape": url.PathEscape,
	}

	var err error
	r.listTmpl, err = template.New("list").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/list.html")
	if err != nil {
		return nil, fmt.Errorf("parse list page: %w", err)
	}
	r.sharedTmpl, err = template.New("shared").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/shared.html")
	if err != nil {
		return nil, fmt.Errorf("parse shared page: %w", err)
	}

	return r, nil
}

func (r *Renderer) localTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(r.location).Format(localTimeLayout)
}

func (r *Renderer) RenderList(w http.ResponseWriter, page ListPage, statusCode int) error {
	if page.Notes == nil {
		page.Notes = []notesapi.Note{}
	}
	return render(w, r.listTmpl, page, statusCode)
}

func (r *Renderer) RenderShared(w http.ResponseWriter, page SharedPage, statusCode int) error {
	return render(w, r.sharedTmpl, page, statusCode)
}

// render executes the whole page into a buffer first, so a template error
// does not leave a half written response behind.
func render(w http.ResponseWriter, tmpl *template.Template, data any, statusCode int) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute %s template: %w", tmpl.Name(), err)
	}
	pkg.WriteHTMLResponse(w, buf.Bytes(), statusCode)
	return nil
}

// StaticHandler serves the embedded css and js assets, to be mounted under /static/.
func StaticHandler() http.Handler {
	staticRoot, err := fs.Sub(staticFS, "static")
	if err != nil {
		// the embedded directory always exists
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot)))
}
