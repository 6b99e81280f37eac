package web

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/leoninela2025/tennis-bot/internal/auth"
	"github.com/leoninela2025/tennis-bot/internal/db"
	"github.com/leoninela2025/tennis-bot/internal/jobs"
)

//go:embed templates/*.html
var fs embed.FS

// Server is the admin UI: log in, see jobs and their attempt history, create
// a job, trigger one immediately.
type Server struct {
	Auth *auth.Store
	Jobs *jobs.Repo

	BaseURL string
}

type jobView struct {
	jobs.Job
	Attempts []jobs.Attempt
}

type tmplData struct {
	Title string
	User  int64
	Flash string

	Jobs []jobView
	Job  jobs.Job
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/logout", s.handleLogout)

	mux.Handle("/", s.Auth.RequireAuth(http.HandlerFunc(s.handleHome)))
	mux.Handle("/jobs/new", s.Auth.RequireAuth(http.HandlerFunc(s.handleJobNew)))
	mux.Handle("/jobs/create", s.Auth.RequireAuth(http.HandlerFunc(s.handleJobCreate)))
	mux.Handle("/jobs/run", s.Auth.RequireAuth(http.HandlerFunc(s.handleJobRun)))

	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	js, err := s.Jobs.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	views := make([]jobView, 0, len(js))
	for _, j := range js {
		attempts, err := s.Jobs.RecentAttempts(r.Context(), j.ID, 5)
		if err != nil {
			log.Printf("web: attempts for job %d: %v", j.ID, err)
		}
		views = append(views, jobView{Job: j, Attempts: attempts})
	}

	s.render(w, "templates/jobs.html", tmplData{Title: "Jobs", User: uid, Jobs: views})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "templates/login.html", tmplData{Title: "Login"})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		username := strings.TrimSpace(r.FormValue("username"))
		id, err := s.Auth.Authenticate(r.Context(), username, r.FormValue("password"))
		if err != nil {
			s.render(w, "templates/login.html", tmplData{Title: "Login", Flash: "Invalid username/password"})
			return
		}
		if err := s.Auth.SetSession(w, r, id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Auth.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleJobNew(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	s.render(w, "templates/new_job.html", tmplData{
		Title: "New Job",
		User:  uid,
		Job: jobs.Job{
			Timezone:        "Europe/Warsaw",
			DurationMinutes: 60,
			IntervalSec:     30,
		},
	})
}

func (s *Server) handleJobCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	playDate, err := time.Parse("2006-01-02", r.FormValue("play_date"))
	if err != nil {
		s.render(w, "templates/new_job.html", tmplData{Title: "New Job", Flash: "Invalid play date"})
		return
	}

	tz := strings.TrimSpace(r.FormValue("timezone"))
	if tz == "" {
		tz = "Europe/Warsaw"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.render(w, "templates/new_job.html", tmplData{Title: "New Job", Flash: "Invalid timezone"})
		return
	}

	daysOut, _ := strconv.Atoi(r.FormValue("days_out"))
	leadMin, _ := strconv.Atoi(r.FormValue("lead_minutes"))
	windowMin, _ := strconv.Atoi(r.FormValue("window_minutes"))
	duration, _ := strconv.Atoi(r.FormValue("duration_minutes"))
	intervalSec, _ := strconv.Atoi(r.FormValue("interval_seconds"))

	windowStart, windowEnd, err := jobs.Window(playDate, daysOut, strings.TrimSpace(r.FormValue("release_time")), leadMin, windowMin, loc)
	if err != nil {
		s.render(w, "templates/new_job.html", tmplData{Title: "New Job", Flash: err.Error()})
		return
	}

	j := jobs.Job{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Facility:        strings.TrimSpace(r.FormValue("facility")),
		Court:           strings.TrimSpace(r.FormValue("court")),
		PlayDate:        playDate,
		StartTime:       strings.TrimSpace(r.FormValue("start_time")),
		DurationMinutes: duration,
		Timezone:        tz,
		WindowStartAt:   windowStart,
		WindowEndAt:     windowEnd,
		IntervalSec:     intervalSec,
	}
	if err := j.Validate(); err != nil {
		s.render(w, "templates/new_job.html", tmplData{Title: "New Job", Flash: err.Error(), Job: j})
		return
	}

	if _, err := s.Jobs.Create(r.Context(), j); err != nil {
		log.Printf("web: create job: %v", err)
		s.render(w, "templates/new_job.html", tmplData{Title: "New Job", Flash: "Failed to create job", Job: j})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleJobRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "bad job id", http.StatusBadRequest)
		return
	}
	if err := s.Jobs.RunNow(r.Context(), id); err != nil {
		if db.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) render(w http.ResponseWriter, name string, data tmplData) {
	t, err := template.ParseFS(fs, "templates/base.html", name)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
	}
}

// Start serves h until ctx is cancelled, then shuts down gracefully.
func Start(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	fmt.Printf("listening on %s\n", addr)
	return srv.ListenAndServe()
}
