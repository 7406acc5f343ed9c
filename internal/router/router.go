// Package router decides how an inbound profile update request is executed.
package router

import (
	"strings"

	"github.com/pricofy/profile-dispatcher/internal/domain"
)

const (
	// TypeHeader carries the requested Classification.
	TypeHeader = "type"
	// UserIDParam is the path parameter naming the user whose profile is updated.
	UserIDParam = "user_id"
)

// Route is the result of resolving a request: how to run it, and for whom.
type Route struct {
	Classification domain.Classification
	UserID         string
}

// Resolve classifies the request and validates its path parameters.
// The header is checked first, so a bad header is reported even when the path
// is also invalid. Nil maps are treated as empty.
func Resolve(headers, pathParameters map[string]string) (Route, error) {
	classification, err := Classify(headers)
	if err != nil {
		return Route{}, err
	}

	userID, err := UserID(pathParameters)
	if err != nil {
		return Route{}, err
	}

	return Route{Classification: classification, UserID: userID}, nil
}

// Classify reads the type header. Differently-cased copies of the header that
// disagree with each other are rejected as invalid.
func Classify(headers map[string]string) (domain.Classification, error) {
	value, _, ambiguous := header(headers, TypeHeader)
	if ambiguous {
		return "", domain.NewInvalidHeader("Invalid type header. Conflicting values for 'type'.")
	}
	return domain.ParseClassification(value)
}

// UserID returns the user_id path parameter.
func UserID(pathParameters map[string]string) (string, error) {
	userID, ok := pathParameters[UserIDParam]
	if !ok {
		return "", domain.NewInvalidPath("Invalid url path. Please enter a valid path.")
	}
	if userID == "" {
		return "", domain.NewInvalidPath("Invalid user_id. Please enter valid user_id.")
	}
	return userID, nil
}

// header looks a header up by exact name first; API Gateway does not
// normalize header case, so fall back to a case-insensitive match. The
// fallback is ambiguous when matching keys carry different values.
func header(headers map[string]string, name string) (value string, found, ambiguous bool) {
	if v, ok := headers[name]; ok {
		return v, true, false
	}
	for k, v := range headers {
		if !strings.EqualFold(k, name) {
			continue
		}
		if found && v != value {
			return "", false, true
		}
		value, found = v, true
	}
	return value, found, false
}
