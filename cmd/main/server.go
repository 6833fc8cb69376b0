package main

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/CTAG07/Libation/pkg/dataset"
	"github.com/CTAG07/Libation/pkg/templating"
	"github.com/dustin/go-humanize"
)

// Server holds everything a request needs. It is built once at startup and
// only read afterwards.
type Server struct {
	logger     *slog.Logger
	index      *dataset.Index
	tm         *templating.TemplateManager
	categories []Category
	static     http.FileSystem
	mux        *http.ServeMux
}

// NewServer wires the routes for the site. index may be empty but not nil.
func NewServer(config *Config, logger *slog.Logger, index *dataset.Index) *Server {
	server := &Server{
		logger:     logger,
		index:      index,
		tm:         templating.NewTemplateManager(logger, config.Server.TemplateDir),
		categories: validCategories(config.Categories, logger),
		static:     http.Dir(config.Server.StaticDir),
		mux:        http.NewServeMux(),
	}

	server.mux.HandleFunc("GET /{$}", server.handleHome)
	for _, c := range server.categories {
		server.mux.HandleFunc("GET /"+c.Slug, server.handleCategory(c))
	}
	server.mux.HandleFunc("GET /country/{slug}", server.handleCountry)

	server.mux.HandleFunc("GET /static/{path...}", server.handleStatic)

	server.mux.HandleFunc("/", server.handleNotFound)

	return server
}

// Handler returns the root handler, wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(s.logger, s.mux)
}

// handleHome renders the landing page with links to every category.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, templateHome, []templating.Replacement{
		{Token: tokenNav, Value: navFragment(s.categories)},
		{Token: tokenCount, Value: humanize.Comma(int64(s.index.Len()))},
	})
}

// handleCategory returns the handler for one ranked table view.
func (s *Server) handleCategory(c Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, templateCategory, []templating.Replacement{
			{Token: tokenTitle, Value: html.EscapeString(c.Title)},
			{Token: tokenColumn, Value: html.EscapeString(c.Label)},
			{Token: tokenRows, Value: tableRows(s.index.Ranked(c.Column), c.Column)},
		})
	}
}

// handleCountry renders the detail page for the record named by the slug.
func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	rec, ok := s.index.Lookup(slug)
	if !ok {
		s.logger.Debug("Unknown country requested", "slug", slug)
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Country not found: %s", slug))
		return
	}

	prev, next, _ := s.index.Neighbors(rec.Name)
	detail, err := detailFragment(rec, s.index.Columns(), prev, next)
	if err != nil {
		s.logger.Error("Failed to build detail view", "country", rec.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	name := html.EscapeString(rec.Name)
	s.render(w, r, templateCountry, []templating.Replacement{
		{Token: tokenTitle, Value: name},
		{Token: tokenCountry, Value: name},
		{Token: tokenDetail, Value: detail},
	})
}

// handleStatic serves regular files from the static directory. Directories
// are never listed.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	f, err := s.static.Open("/" + r.PathValue("path"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		s.handleNotFound(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// handleNotFound answers every path no other route claims.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, fmt.Sprintf("Page not found: %s", r.URL.Path))
}

// render executes the named template into a buffer so that a missing template
// produces a clean 500 instead of a partial page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, replacements []templating.Replacement) {
	var buf bytes.Buffer
	if err := s.tm.Execute(&buf, name, replacements); err != nil {
		if errors.Is(err, templating.ErrMissingTemplate) {
			s.logger.Error("Template is missing", "template", name, "path", r.URL.Path, "error", err)
		} else {
			s.logger.Error("Failed to execute template", "template", name, "error", err)
		}
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// respondWithError writes a minimal HTML error page. message is escaped.
func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	status := html.EscapeString(http.StatusText(code))
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>%d %s</title></head><body><h1>%s</h1><p>%s</p></body></html>\n",
		code, status, status, html.EscapeString(message))
}
