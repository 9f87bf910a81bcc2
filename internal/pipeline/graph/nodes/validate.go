package nodes

import (
	"context"
	"strings"

	"github.com/ia-assistant/server/internal/pipeline/model"
)

const msgEmptyInput = "Por favor ingresa una pregunta o mensaje"

// InputValidator trims the question and rejects blank input.
type InputValidator struct{}

func NewInputValidator() *InputValidator { return &InputValidator{} }

func (v *InputValidator) Name() string { return NodeValidateInput }

func (v *InputValidator) Run(_ context.Context, s model.State) (model.State, error) {
	text := strings.TrimSpace(s.UserInput)
	if text == "" {
		return s.Merge(model.Patch{InputValid: model.Ptr(false)}),
			model.NewStageError(NodeValidateInput, model.KindValidation, msgEmptyInput, nil)
	}

	return s.Merge(model.Patch{
		InputValid:     model.Ptr(true),
		ProcessedInput: model.Ptr(text),
		InputLength:    model.Ptr(len(strings.Fields(text))),
		Error:          model.ClearError(),
	}), nil
}
