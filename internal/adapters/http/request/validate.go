package request

import (
	"context"

	"github.com/okian/gvera/internal/domain/types"
	"github.com/okian/gvera/pkg/logger"
	"github.com/okian/gvera/pkg/metrics"
)

// Validate runs the validator for caller against the request fields and all
// headers. GET and POST use ParametersFromRequest; other verbs use the
// stream. An incomplete caller is a programming error and panics.
func (r *Request) Validate(ctx context.Context, caller types.Caller) (bool, error) {
	if !caller.Valid() {
		panic("request: Validate needs a caller type and method")
	}
	if r.validator == nil {
		return false, ErrNoValidator
	}

	var fields map[string]string
	if r.IsGet() || r.IsPost() {
		fields = r.ParametersFromRequest()
	} else {
		var err error
		if fields, err = r.ParametersFromStream(); err != nil {
			return false, err
		}
	}

	ok, err := r.validator.Validate(ctx, caller.Type, caller.Method, fields, r.transport.Header)
	if ok {
		metrics.RecordValidation(caller.Key(), "valid")
		return true, nil
	}
	metrics.RecordValidation(caller.Key(), "invalid")
	r.logger.Debug(ctx, "request failed validation", logger.String("caller", caller.Key()), logger.Error(err))
	return false, err
}
