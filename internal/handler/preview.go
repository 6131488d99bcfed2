package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"honnef.co/go/curve"

	"github.com/sakif/easing-playground/internal/geometry"
)

// previewSize is the width of the preview plot in SVG user units.
const previewSize = 100

// previewTemplate renders a simplified curve as a standalone SVG document.
//
// WHY html/template?
// It escapes every value it interpolates for the context it lands in, so a
// path string can never break out of its attribute.
const previewTemplate = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 {{.MinY}} {{.Width}} {{.Height}}" preserveAspectRatio="none">
  <path d="{{.D}}" fill="none" stroke="currentColor" stroke-width="2" vector-effect="non-scaling-stroke"/>
</svg>
`

type previewData struct {
	MinY, Width, Height float64
	D                   string
}

// PreviewHandler draws the simplified curve of a request.
// It parses its template once at startup and reuses it for every request.
type PreviewHandler struct {
	*ProcessHandler
	tmpl *template.Template
}

// NewPreviewHandler creates a new PreviewHandler on top of a ProcessHandler.
func NewPreviewHandler(ph *ProcessHandler) *PreviewHandler {
	return &PreviewHandler{
		ProcessHandler: ph,
		tmpl:           template.Must(template.New("preview").Parse(previewTemplate)),
	}
}

// HandlePreview serves the simplified curve as an SVG image.
//
// HTTP: POST /api/preview
// REQUEST BODY: same as POST /api/process
// RESPONSE:     image/svg+xml
//
// The document is rendered into a buffer first: if the template fails we can
// still send a clean 500 instead of half an image.
func (h *PreviewHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	out, ok := h.process(w, r)
	if !ok {
		return
	}

	plot := geometry.PlotPoints(out.Output.Points, previewSize)
	data := previewData{
		MinY:   plot.MinY,
		Width:  previewSize,
		Height: plot.Height,
		D:      plot.Path.SVG(curve.SVGOptions{}),
	}

	var buf bytes.Buffer
	if err := h.tmpl.Execute(&buf, data); err != nil {
		h.logger.Error("failed to render preview", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
