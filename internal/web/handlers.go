package web

import (
	"net/http"
	"strconv"

	"github.com/hpungsan/sidenote/internal/index"
)

// Handlers holds dependencies for web request handlers.
type Handlers struct {
	idx      *index.Store
	renderer *Renderer
}

// HandleList renders the annotated-file list page.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", index.DefaultListLimit)
	offset := queryInt(r, "offset", 0)

	out, err := h.idx.List(limit, offset)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   "Notes",
			Version: h.renderer.version,
			Nav:     "notes",
		},
		Records: out.Records,
		Total:   out.Total,
		Limit:   out.Limit,
		Offset:  out.Offset,
		HasMore: out.HasMore,
	})
}

// HandleDetail renders a single note with its body as markdown.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	rec, err := h.idx.Get(id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   rec.Title,
			Version: h.renderer.version,
			Nav:     "notes",
		},
		Record:       rec,
		RenderedBody: renderMarkdown(rec.Body),
	})
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
