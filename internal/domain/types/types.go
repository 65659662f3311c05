// Package types contains common types used across the application
package types

import (
	"reflect"
	"strings"
)

// Method is the HTTP verb captured when a request enters the application.
type Method int

// Supported verbs. MethodUnknown covers anything the shim does not dispatch on.
const (
	MethodUnknown Method = iota
	MethodGet
	MethodPost
	MethodPut
	MethodPatch
	MethodDelete
	MethodOptions
)

var methodNames = map[Method]string{
	MethodGet:     "GET",
	MethodPost:    "POST",
	MethodPut:     "PUT",
	MethodPatch:   "PATCH",
	MethodDelete:  "DELETE",
	MethodOptions: "OPTIONS",
}

// ParseMethod maps a verb string onto a Method, ignoring case.
func ParseMethod(s string) Method {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET":
		return MethodGet
	case "POST":
		return MethodPost
	case "PUT":
		return MethodPut
	case "PATCH":
		return MethodPatch
	case "DELETE":
		return MethodDelete
	case "OPTIONS":
		return MethodOptions
	default:
		return MethodUnknown
	}
}

// String returns the upper-case verb, or "UNKNOWN".
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "UNKNOWN"
}

// IsStream reports whether the verb carries a raw url-encoded body
// that is not pre-parsed by net/http (PUT, PATCH, DELETE).
func (m Method) IsStream() bool {
	return m == MethodPut || m == MethodPatch || m == MethodDelete
}

// Credentials holds HTTP basic-auth details.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"-"`
}

// Caller identifies the controller method asking for validation.
type Caller struct {
	Type   string
	Method string
}

// CallerOf builds a Caller from a controller value and the name of the
// method being executed. Only the short type name is kept.
func CallerOf(controller any, method string) Caller {
	t := reflect.TypeOf(controller)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := ""
	if t != nil {
		name = t.Name()
	}
	return Caller{Type: name, Method: method}
}

// Valid reports whether both halves of the caller identity are set.
func (c Caller) Valid() bool {
	return c.Type != "" && c.Method != ""
}

// Key returns the "<Type>.<Method>" lookup key used by validators.
func (c Caller) Key() string {
	return c.Type + "." + c.Method
}
