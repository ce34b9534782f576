package provision

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Step labels attached to failure logs.
const (
	StepCreateUser       = "create_user"
	StepCreateCollection = "create_collection"
	StepInspect          = "inspect"
)

// Server error codes the bootstrap can run into.
const (
	codeUnauthorized         = 13
	codeAuthenticationFailed = 18
	codeNamespaceExists      = 48
	codeUserAlreadyExists    = 51003
)

// The helpers below classify errors returned by Apply. They never wrap or
// rewrite the error; callers keep the server's error as-is.

// IsDuplicateUser reports whether err is the server refusing createUser
// because the user already exists.
func IsDuplicateUser(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if ce.Code == codeUserAlreadyExists {
			return true
		}
		return ce.Code == 0 && strings.Contains(strings.ToLower(ce.Message), "user") &&
			strings.Contains(strings.ToLower(ce.Message), "already exists")
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "user") && strings.Contains(s, "already exists")
}

// IsNamespaceExists reports whether err is the server refusing to create a
// collection that already exists.
func IsNamespaceExists(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == codeNamespaceExists || ce.Name == "NamespaceExists") {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "namespaceexists") || strings.Contains(s, "collection already exists")
}

// IsUnauthorized reports authentication and authorization failures, e.g. the
// connecting principal lacks userAdmin on the target database.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return ce.Code == codeUnauthorized || ce.Code == codeAuthenticationFailed
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "authentication failed") || strings.Contains(s, "not authorized")
}

// IsConnectionError reports network, timeout and server-selection failures.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "server selection") || strings.Contains(s, "connection refused")
}
