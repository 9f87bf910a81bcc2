package nodes

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ia-assistant/server/internal/artifacts"
	"github.com/ia-assistant/server/internal/mail"
	"github.com/ia-assistant/server/internal/pipeline/model"
	logx "github.com/ia-assistant/server/pkg/logger"
)

const (
	msgNoRecipient  = "No se proporcionó email del destinatario"
	msgNoArtifact   = "No se encontró el archivo PDF para enviar"
	msgDeliveryFail = "Error al enviar email: %v"
)

// Mailer sends one message and returns once the server accepted or refused it.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

// ArtifactReader loads a stored document back for delivery.
type ArtifactReader interface {
	Exists(path string) bool
	Read(path string) ([]byte, error)
}

// DocumentDeliverer mails the rendered document to the requested recipient.
type DocumentDeliverer struct {
	mailer Mailer
	store  ArtifactReader
}

func NewDocumentDeliverer(mailer Mailer, store ArtifactReader) *DocumentDeliverer {
	return &DocumentDeliverer{mailer: mailer, store: store}
}

func (d *DocumentDeliverer) Name() string { return NodeDeliverDocument }

func (d *DocumentDeliverer) Run(ctx context.Context, s model.State) (model.State, error) {
	notSent := model.Patch{EmailSent: model.Ptr(false)}

	to := strings.TrimSpace(s.RecipientEmail)
	if to == "" {
		return s.Merge(notSent), model.NewStageError(NodeDeliverDocument, model.KindPrecondition, msgNoRecipient, nil)
	}
	if !s.HasArtifact() || !d.store.Exists(s.PDFPath) {
		return s.Merge(notSent), model.NewStageError(NodeDeliverDocument, model.KindPrecondition, msgNoArtifact, nil)
	}

	msg, err := d.compose(s, to)
	if err == nil {
		err = d.mailer.Send(ctx, msg)
	}
	if err != nil {
		return s.Merge(notSent),
			model.NewStageError(NodeDeliverDocument, model.KindDependency, fmt.Sprintf(msgDeliveryFail, err), err)
	}

	logx.Info().Str("run_id", logx.RunID(ctx)).Str("recipient", to).Str("file", msg.Attachment.Filename).Msg("document delivered")

	return s.Merge(model.Patch{
		EmailSent: model.Ptr(true),
		Recipient: model.Ptr(to),
		Error:     model.ClearError(),
	}), nil
}

func (d *DocumentDeliverer) compose(s model.State, to string) (mail.Message, error) {
	data, err := d.store.Read(s.PDFPath)
	if err != nil {
		return mail.Message{}, err
	}
	body, err := mail.RenderAnswerBody(s.ProcessedInput, s.LLMResponse)
	if err != nil {
		return mail.Message{}, err
	}

	contentType := artifacts.ContentTypePDF
	if s.IsTextFile {
		contentType = artifacts.ContentTypeBytes
	}

	return mail.Message{
		To:      to,
		Subject: mail.AnswerSubject,
		Body:    body,
		Attachment: &mail.Attachment{
			Filename:    filepath.Base(s.PDFPath),
			ContentType: contentType,
			Data:        data,
		},
	}, nil
}
