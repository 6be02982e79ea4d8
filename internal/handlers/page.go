package handlers

import (
	"bytes"
	"html/template"
	"log"
	"net/http"

	"github.com/ghautomation/testpage/internal/metrics"
	"github.com/ghautomation/testpage/internal/models"
)

// DummyPageHandler renders the dummy page at the site root
type DummyPageHandler struct {
	template *template.Template
	page     models.DummyPage
	metrics  *metrics.Metrics
}

// NewDummyPageHandler creates a new DummyPageHandler. m may be nil.
func NewDummyPageHandler(templatePath string, page models.DummyPage, m *metrics.Metrics) (*DummyPageHandler, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return nil, err
	}

	return &DummyPageHandler{
		template: tmpl,
		page:     page,
		metrics:  m,
	}, nil
}

// ServeHTTP handles the GET / request
func (h *DummyPageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	// Render into a buffer so a failed template never sends a partial page
	var buf bytes.Buffer
	if err := h.template.Execute(&buf, h.page); err != nil {
		log.Printf("Error rendering template: %v", err)
		h.metrics.ObserveRender(false)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.metrics.ObserveRender(true)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
