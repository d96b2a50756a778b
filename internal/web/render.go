package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/2beens/workoutcompanion/internal/auth"
	"github.com/2beens/workoutcompanion/internal/users"
	"github.com/2beens/workoutcompanion/internal/workouts"
	"github.com/2beens/workoutcompanion/pkg"

	log "github.com/sirupsen/logrus"
)

const AppName = "Workout Companion"

var (
	//go:embed templates/*.html
	templatesFS embed.FS
	//go:embed static
	staticFS embed.FS
)

var pageNames = []string{
	"home",
	"signup",
	"login",
	"workout",
	"workout_edit",
	"user_workouts",
	"error",
}

type pageData struct {
	AppName     string
	CurrentUser *auth.Identity
	Flashes     []Flash

	Title   string
	Message string

	Form       any
	Owner      *users.User
	IsOwner    bool
	Workout    workouts.WorkoutView
	Workouts   []workouts.WorkoutView
	Activities []workouts.ActivityView
}

var templateFuncs = template.FuncMap{
	"deref": func(v any) any {
		switch val := v.(type) {
		case *int:
			if val == nil {
				return ""
			}
			return *val
		case *string:
			if val == nil {
				return ""
			}
			return *val
		}
		return v
	},
}

func parseTemplates() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(
			templatesFS,
			"templates/base.html",
			"templates/workout_list.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func staticFiles() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// embedded at build time, cannot fail
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

func (handler *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data pageData) {
	t, ok := handler.templates[page]
	if !ok {
		log.Errorf("render: unknown page %s", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	data.AppName = AppName
	data.CurrentUser = auth.IdentityFrom(r.Context())
	data.Flashes = PopFlashes(w, r)

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		log.Errorf("render page %s: %s", page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytes(w, pkg.ContentType.HTML, buf.Bytes(), status)
}

func (handler *Handler) renderError(w http.ResponseWriter, r *http.Request, status int) {
	data := pageData{Title: http.StatusText(status)}
	switch status {
	case http.StatusNotFound:
		data.Message = "The page you are looking for does not exist."
	default:
		data.Message = "Something went wrong. Please try again later."
	}
	handler.render(w, r, status, "error", data)
}
