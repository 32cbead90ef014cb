package scoring

import (
	"errors"
	"fmt"

	"github.com/spigell/lead-scorer/internal/ai"
	"github.com/spigell/lead-scorer/internal/leads"
)

// Kind classifies why a scoring run failed.
type Kind int

const (
	KindUnknown Kind = iota
	// KindPrerequisitesMissing means the offer or the lead set was not supplied.
	KindPrerequisitesMissing
	// KindValidation means the supplied input was malformed.
	KindValidation
	// KindClassification means the intent classifier failed or answered with
	// unusable data.
	KindClassification
	// KindReconciliation means classification results could not be matched back
	// to the leads that were sent. It signals a bug, not a transient fault.
	KindReconciliation
)

func (k Kind) String() string {
	switch k {
	case KindPrerequisitesMissing:
		return "prerequisites_missing"
	case KindValidation:
		return "validation"
	case KindClassification:
		return "classification"
	case KindReconciliation:
		return "reconciliation"
	default:
		return "unknown"
	}
}

// ErrPrerequisitesMissing is wrapped by runs started without an offer or leads.
var ErrPrerequisitesMissing = errors.New("offer and leads must be provided before scoring")

// Error is returned by Scorer.Run. Lead names the affected lead, if any.
type Error struct {
	Kind Kind
	Lead string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Lead != "" {
		msg = fmt.Sprintf("%s: lead %q", msg, e.Lead)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the failure kind carried by err. Classifier and input
// validation errors are recognised even when they were not wrapped in *Error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var scoringErr *Error
	if errors.As(err, &scoringErr) {
		return scoringErr.Kind
	}

	var classErr *ai.ClassificationError
	if errors.As(err, &classErr) {
		return KindClassification
	}

	var validationErr *leads.ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}

	if errors.Is(err, ErrPrerequisitesMissing) {
		return KindPrerequisitesMissing
	}

	return KindUnknown
}
