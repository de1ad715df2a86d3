// Package request models the identity of a FRED API request: the
// path-plus-query fragment that names a resource and the api_key
// credential that authorizes access to it.
package request

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// EnvAPIKey is the environment variable consulted when no credential is
// supplied programmatically.
const EnvAPIKey = "FRED_API_KEY"

// ErrMissingAPIKey is returned by New when no credential is supplied and
// the environment provides none.
var ErrMissingAPIKey = errors.New("missing FRED API key")

// URIError reports that a request fragment cannot be rendered as a valid
// absolute URI. Its message names the fragment, never the credential.
type URIError struct {
	Fragment string
	Err      error
}

// Error implements the error interface.
func (e *URIError) Error() string {
	return fmt.Sprintf("build request uri for %q: %v", e.Fragment, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *URIError) Unwrap() error {
	return e.Err
}

// Spec identifies one FRED request. The fragment is the path-plus-query
// part after the API root and must end in "?" or "&" so the api_key
// parameter can be appended; the credential authorizes the request but
// never participates in caching or rendering.
//
// A Spec is an immutable value: construct a new one instead of mutating.
type Spec struct {
	fragment string
	apiKey   string
}

// New creates a Spec for fragment. An empty apiKey means "not supplied":
// the credential is then resolved from the FRED_API_KEY environment
// variable, and New fails with ErrMissingAPIKey when the variable is
// unset. A variable that is set but empty yields an empty credential.
// The fragment is not validated here; validation happens in URI.
func New(fragment, apiKey string) (Spec, error) {
	if apiKey == "" {
		v, ok := os.LookupEnv(EnvAPIKey)
		if !ok {
			return Spec{}, fmt.Errorf("%w: pass one explicitly or set %s", ErrMissingAPIKey, EnvAPIKey)
		}
		apiKey = v
	}

	return Spec{fragment: fragment, apiKey: apiKey}, nil
}

// URI renders the full request URI <base>/<fragment>api_key=<credential>
// and validates it. Illegal URI characters (an embedded space, control
// bytes, and the like) fail with a *URIError.
func (s Spec) URI(base string) (string, error) {
	uri := fmt.Sprintf("%s/%sapi_key=%s", base, s.fragment, s.apiKey)

	if i := invalidURIByte(uri); i >= 0 {
		return "", &URIError{Fragment: s.fragment, Err: fmt.Errorf("invalid uri character %q", uri[i])}
	}

	if _, err := url.ParseRequestURI(uri); err != nil {
		// url.Error embeds the full URL, credential included; unwrap it
		// so the rendered error carries the fragment only.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return "", &URIError{Fragment: s.fragment, Err: err}
	}

	return uri, nil
}

// CacheKey returns the key under which this request's response is cached:
// exactly the fragment bytes. Requests that differ only in credential
// share a key. The returned slice is a fresh copy.
func (s Spec) CacheKey() []byte {
	return []byte(s.fragment)
}

// Fragment returns the path-plus-query fragment.
func (s Spec) Fragment() string {
	return s.fragment
}

// HasAPIKey reports whether the credential is non-empty.
func (s Spec) HasAPIKey() bool {
	return s.apiKey != ""
}

// String renders the fragment only, keeping the credential out of logs.
func (s Spec) String() string {
	return s.fragment
}

// GoString renders the Spec for %#v with the credential replaced by its
// length.
func (s Spec) GoString() string {
	return fmt.Sprintf("request.Spec{fragment: %q, apiKey: (%d characters)}", s.fragment, len(s.apiKey))
}

// invalidURIByte returns the index of the first byte RFC 3986 does not
// permit in a request URI, or -1.
func invalidURIByte(s string) int {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case strings.IndexByte("-._~:/?#[]@!$&'()*+,;=%", b) >= 0:
		default:
			return i
		}
	}
	return -1
}
