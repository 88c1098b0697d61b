package demoserver

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trusted-tools/ghostjobs/internal/analyzer"
	"github.com/trusted-tools/ghostjobs/internal/logging"
)

// DemoServer is a fixture job board whose postings carry controlled
// Last-Modified ages, for exercising the checker end to end.
type DemoServer struct {
	cfg      Config
	logger   logging.Logger
	postings map[string]Posting
	ages     map[string]*int // path -> current age override
	now      func() time.Time
	mu       sync.RWMutex
}

// NewDemoServer creates a new demo server instance.
func NewDemoServer(cfg Config, logger logging.Logger) *DemoServer {
	s := &DemoServer{
		cfg:      cfg,
		logger:   logger.With(logging.Field{Key: "component", Value: "demoserver"}),
		postings: make(map[string]Posting),
		now:      time.Now,
	}
	for _, p := range DefaultPostings() {
		s.postings[p.Path] = p
	}
	s.resetAges()
	return s
}

// Handler returns the board's routes.
func (s *DemoServer) Handler() http.Handler {
	mux := http.NewServeMux()

	for path := range s.postings {
		mux.HandleFunc("GET "+path, s.postingHandler(path))
	}

	mux.HandleFunc("GET /{$}", s.controlPanelHandler)
	mux.HandleFunc("GET /demo/control", s.controlPanelHandler)
	mux.HandleFunc("GET /demo/postings", s.listPostingsHandler)
	mux.HandleFunc("POST /demo/set-age", s.setAgeHandler)
	mux.HandleFunc("POST /demo/reset", s.resetHandler)

	return mux
}

// Start listens on the configured port and blocks.
func (s *DemoServer) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("demo job board starting",
		logging.Field{Key: "url", Value: "http://localhost" + addr},
		logging.Field{Key: "control_panel", Value: "http://localhost" + addr + "/demo/control"})

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *DemoServer) resetAges() {
	s.ages = make(map[string]*int, len(s.postings))
	for path, p := range s.postings {
		if p.AgeDays != nil {
			s.ages[path] = days(*p.AgeDays)
		}
	}
}

func (s *DemoServer) ageOf(path string) *int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if age, ok := s.ages[path]; ok {
		return days(*age)
	}
	return nil
}

// postingHandler returns a handler for a specific posting path.
func (s *DemoServer) postingHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := s.postings[path]

		if p.RedirectTo != "" {
			http.Redirect(w, r, p.RedirectTo, http.StatusFound)
			return
		}

		if age := s.ageOf(path); age != nil {
			lm := s.now().Add(-time.Duration(*age) * 24 * time.Hour)
			w.Header().Set("Last-Modified", lm.UTC().Format(http.TimeFormat))
		}

		status := p.Status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_ = postingTmpl.Execute(w, p)
	}
}

// PostingInfo is one row of /demo/postings.
type PostingInfo struct {
	Path          string `json:"path"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	AgeDays       *int   `json:"age_days"`
	Status        int    `json:"status"`
	RedirectTo    string `json:"redirect_to,omitempty"`
	ExpectedScore int    `json:"expected_score"`
}

// Postings lists the board, sorted by path.
func (s *DemoServer) Postings() []PostingInfo {
	out := make([]PostingInfo, 0, len(s.postings))
	for path, p := range s.postings {
		target := p
		if p.RedirectTo != "" {
			target = s.postings[p.RedirectTo]
		}
		age := s.ageOf(target.Path)
		status := target.Status
		if status == 0 {
			status = http.StatusOK
		}
		out = append(out, PostingInfo{
			Path:          path,
			Title:         p.Title,
			Company:       p.Company,
			AgeDays:       age,
			Status:        status,
			RedirectTo:    p.RedirectTo,
			ExpectedScore: analyzer.ScoreFor(analyzer.FreshnessBucket(age)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (s *DemoServer) listPostingsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.Postings())
}

// setAgeHandler changes the Last-Modified age of one posting. An empty or
// "none" days value removes the header.
func (s *DemoServer) setAgeHandler(w http.ResponseWriter, r *http.Request) {
	path := r.FormValue("path")
	if _, ok := s.postings[path]; !ok {
		http.Error(w, "Unknown posting", http.StatusNotFound)
		return
	}

	var age *int
	if raw := strings.TrimSpace(r.FormValue("days")); raw != "" && raw != "none" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "Invalid days value", http.StatusBadRequest)
			return
		}
		age = days(n)
	}

	s.mu.Lock()
	if age == nil {
		delete(s.ages, path)
	} else {
		s.ages[path] = age
	}
	s.mu.Unlock()

	s.logger.Info("posting age changed", logging.Field{Key: "path", Value: path}, logging.Field{Key: "age_days", Value: age})

	if wantsHTML(r) {
		http.Redirect(w, r, "/demo/control", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"path":     path,
		"age_days": age,
	})
}

// resetHandler restores every posting to its default age.
func (s *DemoServer) resetHandler(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.resetAges()
	s.mu.Unlock()

	if wantsHTML(r) {
		http.Redirect(w, r, "/demo/control", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"message": "All postings reset",
	})
}

// wantsHTML reports whether the request came from the control panel form.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// controlPanelHandler serves the control panel for age management.
func (s *DemoServer) controlPanelHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = controlTmpl.Execute(w, s.Postings())
}

var postingTmpl = template.Must(template.New("posting").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}} at {{.Company}}</title>
    <link rel="canonical" href="{{.Path}}">
</head>
<body>
    <h1>{{.Title}}</h1>
    <p class="company">{{.Company}}{{if .Location}} · {{.Location}}{{end}}</p>
    <p>{{.Description}}</p>
    <a class="apply" href="#apply">Apply now</a>
</body>
</html>`))

var controlTmpl = template.Must(template.New("control").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Demo Job Board Control Panel</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; max-width: 960px; margin: 0 auto; padding: 20px; background: #f5f5f5; }
        h1 { color: #333; border-bottom: 2px solid #6f42c1; padding-bottom: 10px; }
        table { width: 100%; border-collapse: collapse; background: white; }
        th, td { text-align: left; padding: 10px; border-bottom: 1px solid #eee; }
        .score { font-weight: bold; }
        .info-box { background: #efe7ff; padding: 15px; border-radius: 8px; margin-bottom: 20px; border-left: 4px solid #6f42c1; }
    </style>
</head>
<body>
    <h1>Demo Job Board</h1>

    <div class="info-box">
        <strong>How to use:</strong> Paste a posting URL into the checker, or change a posting's age below
        to move it between the fresh, aging and stale bands.
    </div>

    <table>
        <tr><th>Posting</th><th>Age (days)</th><th>Status</th><th>Expected score</th><th>Set age</th></tr>
        {{range .}}
        <tr>
            <td><a href="{{.Path}}" target="_blank">{{.Path}}</a><br><small>{{.Title}}</small></td>
            <td>{{if .AgeDays}}{{.AgeDays}}{{else}}none{{end}}</td>
            <td>{{if .RedirectTo}}302 → {{.RedirectTo}}{{else}}{{.Status}}{{end}}</td>
            <td class="score">{{.ExpectedScore}}</td>
            <td>
                {{if not .RedirectTo}}
                <form method="post" action="/demo/set-age">
                    <input type="hidden" name="path" value="{{.Path}}">
                    <input type="text" name="days" size="5" placeholder="days">
                    <button type="submit">Set</button>
                </form>
                {{end}}
            </td>
        </tr>
        {{end}}
    </table>

    <form method="post" action="/demo/reset" style="margin-top: 20px">
        <button type="submit">Reset all postings</button>
    </form>
</body>
</html>`))
