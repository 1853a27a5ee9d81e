package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"log"
	"os"

	"github.com/go-pdf/fpdf"

	"github.com/bukodent/presu/internal/config"
	"github.com/bukodent/presu/internal/model"
)

// ErrRender wraps every document generation failure. Callers surface it as
// a single opaque error; there is no partial recovery.
var ErrRender = errors.New("error al generar el PDF")

func renderError(err error) error {
	return fmt.Errorf("%w: %v", ErrRender, err)
}

// LoadLogo reads and validates the clinic logo PNG. A missing or unreadable
// logo is not an error: the document renders without it.
func LoadLogo(path string) *Logo {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("presu: no se pudo cargar el logo %s: %v", path, err)
		return nil
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 {
		log.Printf("presu: logo %s no es un PNG válido: %v", path, err)
		return nil
	}
	return &Logo{
		PNG:    data,
		Aspect: float64(cfg.Height) / float64(cfg.Width),
	}
}

// Renderer turns budgets into finished PDF pages. It is safe to reuse for
// any number of renders; each call recomputes the full page.
type Renderer struct {
	clinic config.ClinicConfig
	notes  config.DocumentConfig
	logo   *Logo
}

// NewRenderer builds a renderer for the configured clinic identity. The
// logo at logoPath is optional.
func NewRenderer(clinic config.ClinicConfig, notes config.DocumentConfig, logoPath string) *Renderer {
	return &Renderer{
		clinic: clinic,
		notes:  notes,
		logo:   LoadLogo(logoPath),
	}
}

// Render produces the finished single-page document for a budget as an
// immutable byte sequence. The budget is read, never mutated. Callers are
// expected to debounce rapid repeated invocations.
func (r *Renderer) Render(b *model.Budget) ([]byte, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	doc.SetMargins(0, 0, 0)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	layout := Layout{
		Clinic: r.clinic,
		Notes:  r.notes,
		Logo:   r.logo,
		Measure: func(text string, size float64, bold bool) float64 {
			doc.SetFont("Helvetica", style(bold), size)
			return doc.GetStringWidth(tr(text))
		},
	}
	ops := layout.Compose(b)

	for _, op := range ops.Rects {
		doc.SetFillColor(op.Color.R, op.Color.G, op.Color.B)
		doc.Rect(op.X, op.Y, op.W, op.H, "F")
	}
	for _, op := range ops.Lines {
		doc.SetDrawColor(op.Color.R, op.Color.G, op.Color.B)
		doc.SetLineWidth(op.Width)
		doc.Line(op.X1, op.Y1, op.X2, op.Y2)
	}
	for i, op := range ops.Images {
		name := fmt.Sprintf("img-%d", i)
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(op.PNG))
		doc.ImageOptions(name, op.X, op.Y, op.W, op.H, false, opts, 0, "")
	}
	for _, op := range ops.Texts {
		doc.SetTextColor(op.Color.R, op.Color.G, op.Color.B)
		doc.SetFont("Helvetica", style(op.Bold), op.Size)
		doc.Text(op.X, op.Y, tr(op.Text))
	}

	if doc.Err() {
		return nil, renderError(doc.Error())
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, renderError(err)
	}
	return buf.Bytes(), nil
}

func style(bold bool) string {
	if bold {
		return "B"
	}
	return ""
}
