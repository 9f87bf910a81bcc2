package nodes

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	msgNoResponse   = "No hay respuesta del LLM para generar PDF"
	msgRenderFailed = "Error al generar PDF: %v"
)

// ArtifactWriter persists a rendered document.
type ArtifactWriter interface {
	Save(ext string, write func(io.Writer) error) (artifacts.Artifact, error)
}

// DocumentRenderer turns the question and answer into a stored document.
// It prefers the PDF renderer and falls back to plain text when PDF output
// is unavailable.
type DocumentRenderer struct {
	pdf      artifacts.Renderer
	fallback artifacts.Renderer
	store    ArtifactWriter
	now      func() time.Time
	pages    func(path string) (int, error)
}

func NewDocumentRenderer(pdf, fallback artifacts.Renderer, store ArtifactWriter) *DocumentRenderer {
	return &DocumentRenderer{
		pdf:      pdf,
		fallback: fallback,
		store:    store,
		now:      time.Now,
		pages:    artifacts.PageCount,
	}
}

func (r *DocumentRenderer) Name() string { return NodeRenderDocument }

func (r *DocumentRenderer) Run(ctx context.Context, s model.State) (model.State, error) {
	if !s.HasResponse() {
		return s.Merge(model.Patch{PDFPath: model.Ptr(""), PDFFilename: model.Ptr("")}),
			model.NewStageError(NodeRenderDocument, model.KindPrecondition, msgNoResponse, nil)
	}

	renderer, isText := r.pick()
	if isText {
		logx.Info().Str("run_id", logx.RunID(ctx)).Msg("pdf output unavailable, writing plain text document")
	}

	doc := artifacts.NewDocument(s.ProcessedInput, s.LLMResponse, r.now())
	art, err := r.store.Save(renderer.Extension(), func(w io.Writer) error {
		return renderer.Render(w, doc)
	})
	if err != nil {
		return s.Merge(model.Patch{PDFPath: model.Ptr(""), PDFFilename: model.Ptr("")}),
			model.NewStageError(NodeRenderDocument, model.KindDependency, fmt.Sprintf(msgRenderFailed, err), err)
	}

	pages := 0
	if !isText && r.pages != nil {
		if pages, err = r.pages(art.Path); err != nil {
			logx.Warn().Err(err).Str("run_id", logx.RunID(ctx)).Str("path", art.Path).Msg("could not count pdf pages")
			pages = 0
		}
	}

	logx.Debug().Str("run_id", logx.RunID(ctx)).Str("path", art.Path).Int("pages", pages).Msg("document rendered")

	return s.Merge(model.Patch{
		PDFPath:     model.Ptr(art.Path),
		PDFFilename: model.Ptr(art.Filename),
		PDFPages:    model.Ptr(pages),
		IsTextFile:  model.Ptr(isText),
		Error:       model.ClearError(),
	}), nil
}

func (r *DocumentRenderer) pick() (artifacts.Renderer, bool) {
	if r.pdf != nil && r.pdf.Capability() == artifacts.Available {
		return r.pdf, false
	}
	return r.fallback, true
}
