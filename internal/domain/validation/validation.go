// Package validation checks request fields and headers against rules keyed
// by the controller and method handling the request.
package validation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/okian/gvera/pkg/logger"
)

// headerPrefix marks a rule target as a request header rather than a field.
const headerPrefix = "@"

// Validator validates the inputs of one controller method.
type Validator interface {
	// Validate returns true when every rule for controller.method passes.
	// A failing validation returns false and a FieldErrors.
	Validate(ctx context.Context, controller, method string, fields map[string]string, headers http.Header) (bool, error)
}

// Rules maps controller -> method -> field -> rule list.
type Rules map[string]map[string]map[string][]string

// check is one rule compiled to a validator tag. label is the name
// reported in FieldErrors.
type check struct {
	label string
	tag   string
	trim  bool
}

type compiledField struct {
	name   string
	header bool
	checks []check
}

// RuleValidator is a Validator driven by declarative rules.
type RuleValidator struct {
	rules    map[string][]compiledField
	validate *validator.Validate
	logger   logger.Logger
}

// Option applies a configuration option to the RuleValidator.
type Option func(*RuleValidator)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(v *RuleValidator) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewRuleValidator compiles rules up front so typos fail at startup.
func NewRuleValidator(rules Rules, opts ...Option) (*RuleValidator, error) {
	v := &RuleValidator{
		rules:    make(map[string][]compiledField),
		validate: validator.New(),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(v)
	}

	for controller, methods := range rules {
		for method, fields := range methods {
			key := controller + "." + method
			for field, list := range fields {
				cf := compiledField{name: field}
				if strings.HasPrefix(field, headerPrefix) {
					cf.header = true
					cf.name = strings.TrimPrefix(field, headerPrefix)
				}
				for _, rule := range list {
					c, err := compile(rule)
					if err != nil {
						return nil, fmt.Errorf("%s %s: %w", key, field, err)
					}
					cf.checks = append(cf.checks, c)
				}
				v.rules[key] = append(v.rules[key], cf)
			}
		}
	}
	return v, nil
}

// Validate implements Validator. A controller method without rules is valid.
func (v *RuleValidator) Validate(ctx context.Context, controller, method string, fields map[string]string, headers http.Header) (bool, error) {
	key := controller + "." + method
	compiled, ok := v.rules[key]
	if !ok {
		return true, nil
	}

	errs := FieldErrors{}
	for _, cf := range compiled {
		var value string
		label := cf.name
		if cf.header {
			value = headers.Get(cf.name)
			label = headerPrefix + cf.name
		} else {
			value = fields[cf.name]
		}
		for _, c := range cf.checks {
			in := value
			if c.trim {
				in = strings.TrimSpace(in)
			}
			err := v.validate.VarCtx(ctx, in, c.tag)
			if err == nil {
				continue
			}
			var ve validator.ValidationErrors
			if !errors.As(err, &ve) {
				return false, fmt.Errorf("%s %s: %w", key, label, err)
			}
			errs.Add(label, c.label)
		}
	}

	if errs.HasErrors() {
		v.logger.Debug(ctx, "validation failed", logger.String("caller", key), logger.Any("errors", map[string][]string(errs)))
		return false, errs
	}
	return true, nil
}

// compile maps a rule onto a validator tag. Every rule except "required"
// is prefixed with omitempty so it only applies to non-empty values.
func compile(rule string) (check, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(rule), ":")
	switch name = strings.ToLower(name); name {
	case "required":
		return check{label: name, tag: "required", trim: true}, nil
	case "numeric", "email":
		return check{label: name, tag: "omitempty," + name}, nil
	case "alpha":
		return check{label: name, tag: "omitempty,alphaunicode"}, nil
	case "min", "max":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 {
			return check{}, fmt.Errorf("%w: %q needs a non-negative length", ErrUnknownRule, rule)
		}
		return check{label: name + ":" + strconv.Itoa(n), tag: "omitempty," + name + "=" + strconv.Itoa(n)}, nil
	default:
		return check{}, fmt.Errorf("%w: %q", ErrUnknownRule, rule)
	}
}
