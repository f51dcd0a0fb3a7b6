package domain

import "strconv"

// Reserved query parameters managed by the URL builder.
const (
	ParamKey    = "key"
	ParamFormat = "format"

	DefaultFormat = "json"
)

// Param is a single query parameter. Values are already stringified.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Order matters for the built URL, so
// this is a slice rather than a map.
type Params []Param

// P returns a string-valued parameter.
func P(key, value string) Param {
	return Param{Key: key, Value: value}
}

// IntParam returns an integer-valued parameter.
func IntParam(key string, value int) Param {
	return Param{Key: key, Value: strconv.Itoa(value)}
}

// Has reports whether key appears in the list.
func (p Params) Has(key string) bool {
	for _, param := range p {
		if param.Key == key {
			return true
		}
	}
	return false
}

// With returns a copy of p with extra appended. p is not modified.
func (p Params) With(extra ...Param) Params {
	out := make(Params, 0, len(p)+len(extra))
	out = append(out, p...)
	return append(out, extra...)
}

// RequestSpec describes an API call before URL materialization.
//
// OmitKey is the inverse of "include key" so the zero value keeps the key
// whenever a credential is configured.
type RequestSpec struct {
	Path    string
	Params  Params
	OmitKey bool
}

// Request is shorthand for a RequestSpec that includes the key.
func Request(path string, params ...Param) RequestSpec {
	return RequestSpec{Path: path, Params: params}
}
