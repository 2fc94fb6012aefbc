// Package server implements the service boundary: the REST endpoints the
// remote command client calls, plus the websocket broadcast hub.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/HunterLewis000/newspaper-app/internal/bus"
	"github.com/HunterLewis000/newspaper-app/internal/model"
	"github.com/HunterLewis000/newspaper-app/internal/store"
)

// maxUploadBytes bounds one attachment upload.
const maxUploadBytes = 25 << 20

type Server struct {
	Store *store.Store
	Hub   *Hub

	// Broadcast is separated from Hub so handler tests can capture events.
	Broadcast func(bus.Envelope)
}

func New(st *store.Store, hub *Hub) *Server {
	s := &Server{Store: st, Hub: hub}
	s.Broadcast = hub.Broadcast
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/articles", s.handleListArticles)
	r.Get("/archived", s.handleListArchived)
	r.Post("/add", s.handleAdd)
	r.Get("/article/{id}", s.handleGetArticle)
	r.Post("/update/{id}", s.handleUpdateFields)
	r.Post("/update_cat/{id}", s.handleUpdateCat)
	r.Post("/update_editor/{id}", s.handleUpdateEditor)
	r.Post("/update_status_color/{id}", s.handleUpdateStatusColor)
	r.Post("/update_status/{id}", s.handleUpdateStatus)
	r.Get("/status_history/{id}", s.handleStatusHistory)
	r.Post("/update_order", s.handleUpdateOrder)
	r.Post("/delete/{id}", s.handleDelete)
	r.Post("/archive/{id}", s.handleArchive)
	r.Post("/activate/{id}", s.handleActivate)

	r.Get("/files/{id}", s.handleFiles)
	r.Post("/upload/{id}", s.handleUpload)
	r.Post("/delete_file/{id}", s.handleDeleteFile)
	r.Get("/download_file/{id}", s.handleDownloadFile)

	r.Get("/ws", s.Hub.HandleWS)

	return r
}

func userName(r *http.Request) string {
	if u := strings.TrimSpace(r.Header.Get("X-User-Name")); u != "" {
		return u
	}
	return "desk"
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func writeError(w http.ResponseWriter, err error) {
	var nf store.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": err.Error()})
	case errors.Is(err, store.ErrPublishedLocked), errors.Is(err, store.ErrNotPublished):
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "error": err.Error()})
	default:
		log.Printf("server: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.Store.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleListArchived(w http.ResponseWriter, r *http.Request) {
	articles, err := s.Store.ListArchived(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		Deadline string `json:"deadline"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(body.Title) == "" || strings.TrimSpace(body.Author) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "title and author are required"})
		return
	}
	a, err := s.Store.CreateArticle(r.Context(), body.Title, body.Author, body.Deadline, userName(r))
	if err != nil {
		writeError(w, err)
		return
	}
	s.Broadcast(bus.Envelope{Event: bus.EventArticleAdded, ID: a.ID, Article: &a})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "article": a})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := s.Store.GetArticle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateFields(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		Deadline string `json:"deadline"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.UpdateFields(r.Context(), id, body.Title, body.Author, body.Deadline); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleUpdateCat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Cat model.Category `json:"cat"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.UpdateCat(r.Context(), id, body.Cat); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleUpdateEditor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Editor model.Editor `json:"editor"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.UpdateEditor(r.Context(), id, body.Editor); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleUpdateStatusColor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Color model.StatusColor `json:"color"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.UpdateStatusColor(r.Context(), id, body.Color); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Status model.Status `json:"status"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.AppendStatus(r.Context(), id, body.Status, userName(r)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleStatusHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := s.Store.History(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []model.StatusHistoryEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Order []int64 `json:"order"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.SaveOrder(r.Context(), body.Order); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Store.Archive(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	// Clients don't publish this one: Mark Complete is confirmed here and the
	// server tells everyone, the originator included.
	s.Broadcast(bus.Envelope{Event: bus.EventArticleArchived, ID: id})
	writeSuccess(w)
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.Store.Activate(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	// Minimal payload on purpose: clients re-fetch the full record, since an
	// archived article may have stale local fields.
	s.Broadcast(bus.Envelope{Event: bus.EventArticleActivated, ID: id})
	writeSuccess(w)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	files, err := s.Store.Files(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if files == nil {
		files = []model.FileAttachment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad upload: " + err.Error()})
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "missing file field"})
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := s.Store.AddFile(r.Context(), id, header.Filename, content)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Broadcast(bus.Envelope{Event: bus.EventFileUploaded, ArticleID: id, FileID: f.ID})
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "file": f})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	articleID, err := s.Store.DeleteFile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Broadcast(bus.Envelope{Event: bus.EventFileDeleted, ArticleID: articleID, FileID: id})
	writeSuccess(w)
}

func (s *Server) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	name, content, err := s.Store.FileContent(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("X-Filename", name)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(content)
}
