package youtube

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// FailureKind partitions upload errors into the three buckets the retry
// policy treats differently. Quota exhaustion must wait out a cool-down,
// auth failures need a human, everything else can retry immediately.
type FailureKind int

const (
	FailureTransient FailureKind = iota
	FailureQuota
	FailureAuth
)

// Marker strings matched against provider error messages. The platform does
// not expose stable error codes for every case, so the substrings live here
// and nowhere else.
var (
	quotaMarkers = []string{
		"quotaExceeded",
		"uploadLimitExceeded",
		"dailyLimitExceeded",
		"rateLimitExceeded",
		"quota exceeded",
	}
	authMarkers = []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"Invalid Credentials",
		"authError",
		"Token has been expired or revoked",
	}
)

// Classify maps an upload error to its failure kind.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureTransient
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return FailureAuth
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return FailureAuth
		}
		for _, item := range apiErr.Errors {
			if matchesAny(item.Reason, quotaMarkers) {
				return FailureQuota
			}
			if matchesAny(item.Reason, authMarkers) {
				return FailureAuth
			}
		}
	}

	message := err.Error()
	if matchesAny(message, quotaMarkers) {
		return FailureQuota
	}
	if matchesAny(message, authMarkers) {
		return FailureAuth
	}
	return FailureTransient
}

func matchesAny(message string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}
