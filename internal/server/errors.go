package server

import (
	"errors"
	"net/http"

	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/scoring"
	"github.com/spigell/lead-scorer/internal/store"
)

// HTTPStatus returns the status code for an error raised while handling a
// request.
func HTTPStatus(err error) int {
	if errors.Is(err, store.ErrRunInProgress) {
		return http.StatusConflict
	}

	switch scoring.KindOf(err) {
	case scoring.KindPrerequisitesMissing, scoring.KindValidation:
		return http.StatusBadRequest
	case scoring.KindClassification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
	Lead  string `json:"lead,omitempty"`
}

func newErrorBody(err error) errorBody {
	body := errorBody{Error: err.Error()}

	var validationErr *leads.ValidationError
	if errors.As(err, &validationErr) {
		body.Error = validationErr.Message
		body.Field = validationErr.Field
	}

	var scoringErr *scoring.Error
	if errors.As(err, &scoringErr) {
		body.Lead = scoringErr.Lead
	}

	if kind := scoring.KindOf(err); kind != scoring.KindUnknown {
		body.Kind = kind.String()
	}

	switch {
	case errors.Is(err, scoring.ErrPrerequisitesMissing):
		body.Error = "Offer and leads must be uploaded first."
	case errors.Is(err, store.ErrRunInProgress):
		body.Error = store.ErrRunInProgress.Error()
	}

	return body
}
