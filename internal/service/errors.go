package service

import (
	"context"

	"buddy-server/internal/apperr"
	"buddy-server/internal/logging"
)

const (
	entityPrompt      = "Prompt"
	entityPromptVoice = "PromptVoice"
	entityUser        = "User"

	opCreation = "creation"
	opLookup   = "lookup"
	opLogin    = "login"
	opRender   = "render"
	opExport   = "export"
)

// fail classifies err, logs it with its diagnostics and returns the
// classified error. Client errors are logged as warnings.
func fail(ctx context.Context, log logging.Logger, err error, entity, op string) error {
	e := apperr.Classify(err, entity, op)
	l := logging.ForContext(ctx, log)
	switch e.Kind {
	case apperr.KindValidation, apperr.KindNotFound, apperr.KindUnauthorized:
		l.Warn(entity+" "+op+" rejected", logging.Fields(e.Fields()), logging.Fields{"error": e.Message})
	default:
		l.Error(entity+" "+op+" failed", e)
	}
	return e
}
