// Package classify turns arbitrary failures into taxonomy errors.
package classify

import (
	"errors"
	"strings"

	"github.com/vietddude/drivingschool/internal/core/apperr"
)

// Backend error codes recognised by the rule set.
const (
	CodeInsufficientPrivilege = "42501"
	CodeUniqueViolation       = "23505"
	CodeForeignKeyViolation   = "23503"
	CodeNoRows                = "PGRST116"
)

// Failure is the closed set of inputs the rules operate on. It is built once
// by Inspect and never leaves this package.
type Failure struct {
	Kind    Kind
	Backend BackendError
	Err     error
	Tax     *apperr.Error
}

// Kind discriminates a Failure.
type Kind int

const (
	KindOpaque Kind = iota
	KindTaxonomy
	KindBackend
	KindException
)

func (k Kind) String() string {
	switch k {
	case KindTaxonomy:
		return "taxonomy"
	case KindBackend:
		return "backend"
	case KindException:
		return "exception"
	default:
		return "opaque"
	}
}

// Inspect sorts raw into one Failure kind. It accepts anything, including nil.
func Inspect(raw any) Failure {
	switch v := raw.(type) {
	case nil:
		return Failure{Kind: KindOpaque}
	case *apperr.Error:
		if !known(v) {
			return Failure{Kind: KindOpaque}
		}
		return Failure{Kind: KindTaxonomy, Tax: v}
	case BackendError:
		return Failure{Kind: KindBackend, Backend: v}
	case *BackendError:
		if v == nil {
			return Failure{Kind: KindOpaque}
		}
		return Failure{Kind: KindBackend, Backend: *v}
	case map[string]any:
		if be, ok := backendFromMap(v); ok {
			return Failure{Kind: KindBackend, Backend: be}
		}
		return Failure{Kind: KindOpaque}
	case error:
		var ae *apperr.Error
		if errors.As(v, &ae) && known(ae) {
			return Failure{Kind: KindTaxonomy, Tax: ae}
		}
		if be, ok := FromDriver(v); ok {
			return Failure{Kind: KindBackend, Backend: be, Err: v}
		}
		return Failure{Kind: KindException, Err: v}
	default:
		return Failure{Kind: KindOpaque}
	}
}

// known reports whether e carries a code from the taxonomy table. A zero
// Error built outside the constructors does not.
func known(e *apperr.Error) bool {
	if e == nil {
		return false
	}
	_, ok := apperr.Lookup(e.Code())
	return ok
}

// Classify maps any failure onto a taxonomy error. It never panics and never
// returns nil.
func Classify(raw any) (out *apperr.Error) {
	defer func() {
		if r := recover(); r != nil {
			out = apperr.NewUnknown(apperr.DefaultUnknownMessage, nil)
		}
	}()

	f := Inspect(raw)
	switch f.Kind {
	case KindTaxonomy:
		return f.Tax
	case KindBackend:
		return classifyBackend(f.Backend)
	case KindException:
		return apperr.NewUnknown(safeMessage(f.Err), f.Err)
	default:
		return apperr.NewUnknown(apperr.DefaultUnknownMessage, nil)
	}
}

// classifyBackend applies the ordered rules; first match wins.
// Code 42501 always means authentication; authorization is keyword-only.
func classifyBackend(be BackendError) *apperr.Error {
	msg := be.Message
	lower := strings.ToLower(msg)

	switch {
	case be.Code == CodeInsufficientPrivilege || strings.Contains(msg, "JWT"):
		return apperr.NewAuthentication("")
	case be.Code == CodeUniqueViolation:
		return apperr.NewConflict("This resource already exists")
	case be.Code == CodeForeignKeyViolation:
		return apperr.NewValidation("Referenced resource does not exist", "")
	case be.Code == CodeNoRows:
		return apperr.NewNotFound("Resource")
	case strings.Contains(msg, "policy"):
		return apperr.NewAuthorization("")
	case strings.Contains(lower, "connection") || strings.Contains(lower, "network"):
		return apperr.NewNetwork(msg)
	default:
		return apperr.NewDatabase(msg, be)
	}
}

// safeMessage reads err.Error() without letting a misbehaving implementation escape.
func safeMessage(err error) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = apperr.DefaultUnknownMessage
		}
	}()
	msg = err.Error()
	if msg == "" {
		msg = apperr.DefaultUnknownMessage
	}
	return msg
}
