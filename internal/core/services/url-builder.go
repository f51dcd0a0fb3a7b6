package services

import (
	"fmt"
	"net/url"
	"strings"

	"rijks-verifier/internal/core/domain"
)

const (
	DefaultRoot     = "https://www.rijksmuseum.nl/api"
	DefaultLocale   = "en"
	AlternateLocale = "nl"
)

// BuilderConfig configures a URLBuilder. APIKey may be empty.
type BuilderConfig struct {
	Root   string
	Locale string
	APIKey string
}

// URLBuilder turns RequestSpecs into absolute request URLs. It holds no
// mutable state and is safe for concurrent use.
type URLBuilder struct {
	root   string
	locale string
	apiKey string
}

// NewURLBuilder validates the root endpoint and returns a builder.
func NewURLBuilder(cfg BuilderConfig) (*URLBuilder, error) {
	root := strings.TrimRight(cfg.Root, "/")
	if root == "" {
		root = DefaultRoot
	}
	if !hasHTTPScheme(root) {
		return nil, &domain.ConstructionError{Path: root, Err: domain.ErrUnsupportedScheme}
	}
	u, err := url.Parse(root)
	if err != nil {
		return nil, &domain.ConstructionError{Path: root, Err: err}
	}
	if u.Host == "" {
		return nil, &domain.ConstructionError{Path: root, Err: fmt.Errorf("missing host")}
	}

	locale := strings.Trim(cfg.Locale, "/")
	if locale == "" {
		locale = DefaultLocale
	}

	return &URLBuilder{root: root, locale: locale, apiKey: cfg.APIKey}, nil
}

// HasAPIKey reports whether a credential is configured.
func (b *URLBuilder) HasAPIKey() bool {
	return b.apiKey != ""
}

// Locale returns the default locale segment.
func (b *URLBuilder) Locale() string {
	return b.locale
}

// WithAPIKey returns a copy of b that uses key as the credential.
func (b *URLBuilder) WithAPIKey(key string) *URLBuilder {
	clone := *b
	clone.apiKey = key
	return &clone
}

// URL builds path with params under the default locale, including the key.
func (b *URLBuilder) URL(path string, params ...domain.Param) (string, error) {
	return b.Build(domain.Request(path, params...))
}

// Build materializes spec under the default locale.
func (b *URLBuilder) Build(spec domain.RequestSpec) (string, error) {
	return b.BuildLocalized(b.locale, spec)
}

// BuildLocalized materializes spec under the given locale segment. Absolute
// paths ignore the locale.
//
// Query order: pairs already on an absolute path, the key, the default
// format (only when nobody set one), then spec.Params in order. Setting a
// key that is already present replaces its value in place.
func (b *URLBuilder) BuildLocalized(locale string, spec domain.RequestSpec) (string, error) {
	if spec.Path == "" {
		return "", &domain.ConstructionError{Path: spec.Path, Err: domain.ErrEmptyPath}
	}

	raw := spec.Path
	if !hasHTTPScheme(raw) {
		base := b.root
		if locale = strings.Trim(locale, "/"); locale != "" {
			base += "/" + locale
		}
		raw = base + "/" + strings.TrimPrefix(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &domain.ConstructionError{Path: spec.Path, Err: err}
	}
	if u.Host == "" {
		return "", &domain.ConstructionError{Path: spec.Path, Err: fmt.Errorf("missing host")}
	}

	query, err := parseQuery(u.RawQuery)
	if err != nil {
		return "", &domain.ConstructionError{Path: spec.Path, Err: err}
	}

	if !spec.OmitKey && b.apiKey != "" {
		query = query.set(domain.ParamKey, b.apiKey)
	}
	if !query.has(domain.ParamFormat) && !spec.Params.Has(domain.ParamFormat) {
		query = query.set(domain.ParamFormat, domain.DefaultFormat)
	}
	for _, p := range spec.Params {
		query = query.set(p.Key, p.Value)
	}

	u.RawQuery = query.encode()
	return u.String(), nil
}

func hasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// queryPairs is an ordered query string. url.Values sorts on Encode, which
// would break the ordering contract.
type queryPairs []domain.Param

func parseQuery(rawQuery string) (queryPairs, error) {
	var pairs queryPairs
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("query key %q: %w", k, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("query value for %q: %w", key, err)
		}
		pairs = append(pairs, domain.Param{Key: key, Value: value})
	}
	return pairs, nil
}

func (q queryPairs) has(key string) bool {
	return domain.Params(q).Has(key)
}

// set replaces the first occurrence of key and drops any later ones, or
// appends when key is absent.
func (q queryPairs) set(key, value string) queryPairs {
	out := q[:0:0]
	found := false
	for _, p := range q {
		if p.Key != key {
			out = append(out, p)
			continue
		}
		if !found {
			out = append(out, domain.Param{Key: key, Value: value})
			found = true
		}
	}
	if !found {
		out = append(out, domain.Param{Key: key, Value: value})
	}
	return out
}

func (q queryPairs) encode() string {
	var sb strings.Builder
	for i, p := range q {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
