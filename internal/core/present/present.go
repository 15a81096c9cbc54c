// Package present converts failures into the response contract shown to end users.
package present

import (
	"github.com/vietddude/drivingschool/internal/core/apperr"
	"github.com/vietddude/drivingschool/internal/core/classify"
	"github.com/vietddude/drivingschool/internal/metrics"
)

// GenericMessage replaces the message of every non-operational error.
const GenericMessage = "An unexpected error occurred. Please try again."

// Reporter receives every resolved error before it is presented.
type Reporter interface {
	Report(err *apperr.Error, fields map[string]any)
}

// Result is the user-safe view of an error.
type Result struct {
	Message    string      `json:"message"`
	Code       apperr.Code `json:"code"`
	StatusCode int         `json:"statusCode"`
}

// Presenter builds Results and reports the underlying errors.
type Presenter struct {
	reporter Reporter
}

// New creates a presenter. reporter may be nil.
func New(reporter Reporter) *Presenter {
	return &Presenter{reporter: reporter}
}

// Present resolves raw to a taxonomy error, reports it with fields, and
// returns the redacted result.
func (p *Presenter) Present(raw any, fields map[string]any) Result {
	err := classify.Classify(raw)
	if p.reporter != nil {
		p.reporter.Report(err, fields)
	}

	res := Result{
		Message:    GenericMessage,
		Code:       err.Code(),
		StatusCode: err.StatusCode(),
	}
	if err.IsOperational() {
		res.Message = err.Message()
	}

	metrics.ResultsPresented.WithLabelValues(string(res.Code)).Inc()
	return res
}
