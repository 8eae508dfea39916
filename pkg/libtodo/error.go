package libtodo

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// StatusExpiredAccessToken is the HTTP status code returned when the access token is expired.
const StatusExpiredAccessToken = 498

// ErrNoSession is returned when an authenticated call is performed without session.
var ErrNoSession = errors.New("no session defined")

// An APIError reprensents an HTTP error returned by the todo service.
type APIError struct {
	StatusCode int
	Err        struct {
		Tag     string `json:"tag"`
		Message string `json:"message"`
	} `json:"error"`
}

func parseAPIError(r io.Reader, code int) error {
	var apierr APIError
	dec := json.NewDecoder(r)
	if err := dec.Decode(&apierr); err != nil {
		return errors.Wrapf(err, "could not parse error of HTTP status %d", code)
	}
	apierr.StatusCode = code
	return &apierr
}

func (e *APIError) Error() string {
	return e.Err.Message
}

// Tag returns the tag of the error.
func (e *APIError) Tag() string {
	return e.Err.Tag
}

// IsExpiredAccessToken returns true if err is due to an expired access token.
func IsExpiredAccessToken(err error) bool {
	apierr, ok := errors.Cause(err).(*APIError)
	return ok && apierr.StatusCode == StatusExpiredAccessToken
}

type (
	// A GraphQLError is an error reported by a GraphQL response.
	GraphQLError struct {
		Message   string
		Path      []string
		ErrorType string
	}

	// GraphQLErrors are the errors reported by a GraphQL response.
	// A response carrying errors is a failure even with partial data.
	GraphQLErrors []GraphQLError
)

func (e GraphQLErrors) Error() string {
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Message
		if len(err.Path) > 0 {
			messages[i] = strings.Join(err.Path, ".") + ": " + err.Message
		}
	}
	return strings.Join(messages, "; ")
}

// HasType returns true if one of the errors has the given type.
func (e GraphQLErrors) HasType(errorType string) bool {
	for _, err := range e {
		if err.ErrorType == errorType {
			return true
		}
	}
	return false
}

func parseGraphQLErrors(errs []*fastjson.Value) GraphQLErrors {
	graphqlerrs := make(GraphQLErrors, 0, len(errs))
	for _, v := range errs {
		err := GraphQLError{
			Message:   string(v.GetStringBytes("message")),
			ErrorType: string(v.GetStringBytes("extensions", "errorType")),
		}

		// Path segments are field names or list indexes.
		for _, segment := range v.GetArray("path") {
			switch segment.Type() {
			case fastjson.TypeString:
				err.Path = append(err.Path, string(segment.GetStringBytes()))
			default:
				err.Path = append(err.Path, segment.String())
			}
		}

		graphqlerrs = append(graphqlerrs, err)
	}
	return graphqlerrs
}
