package httpapi

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github-projects-api/internal/common"
	"github-projects-api/internal/domain"
	"github-projects-api/internal/port"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
<head><meta charset="utf-8"><title>Projects API</title></head>
<body>
<h1>Projects API</h1>
<p>Public repositories of <strong>{{.Account}}</strong>, enriched with topics, README and similar projects.</p>
<ul>
<li><code>GET /projects</code> all projects, most recently updated first</li>
<li><code>GET /projects?name=&lt;fragment&gt;</code> first project whose URL contains the fragment</li>
<li><code>GET /projects/{name}</code> project by name, case-insensitive</li>
<li><code>POST /projects/refresh</code> rebuild the collection</li>
<li><code>GET /healthz</code> cache state</li>
</ul>
<p>{{.Projects}} projects cached.</p>
</body>
</html>
`))

// Handler 处理项目相关的 HTTP 请求
type Handler struct {
	catalog port.ProjectCatalog
	account string
	logger  *log.Logger
}

// NewHandler 创建 Handler
func NewHandler(catalog port.ProjectCatalog, account string, logger *log.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		account: account,
		logger:  logger,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.showIndex)
	r.Get("/healthz", h.health)

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.listProjects)
		r.Post("/refresh", h.refreshProjects)
		r.Get("/{name}", h.getProject)
	})
}

func (h *Handler) showIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Account  string
		Projects int
	}{
		Account:  h.account,
		Projects: h.catalog.Stats().Projects,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		h.logger.Error("❌ 渲染首页失败", "err", err)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Stats())
}

// listProjects 带 name 参数时按 URL 片段查找单个项目
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	if fragment := r.URL.Query().Get("name"); fragment != "" {
		project, err := h.catalog.GetByURL(r.Context(), fragment)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
		return
	}

	writeJSON(w, http.StatusOK, nonNil(h.catalog.GetAll(r.Context())))
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.catalog.GetByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) refreshProjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(h.catalog.Refresh(r.Context())))
}

type errorResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, common.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Project not found"})
		return
	}

	h.logger.Error("❌ 请求处理失败", "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "error", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// nonNil 保证空集合编码成 [] 而不是 null
func nonNil(projects []domain.Project) []domain.Project {
	if projects == nil {
		return []domain.Project{}
	}
	return projects
}
