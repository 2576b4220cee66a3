package keypool

import "net/http"

// FailureClass describes how an upstream failure affects the rotation loop.
type FailureClass int

const (
	// ClassQuotaExceeded means the credential burned its daily budget.
	// Recoverable: deactivate the credential and rotate to the next one.
	ClassQuotaExceeded FailureClass = iota
	// ClassForbidden means the credential was rejected for another reason.
	// Recoverable, same handling as quota exhaustion.
	ClassForbidden
	// ClassNotFound means the requested resource does not exist. Terminal.
	ClassNotFound
	// ClassOther covers everything else. Terminal.
	ClassOther
)

// Upstream reason codes that indicate an exhausted credential.
var quotaReasons = map[string]bool{
	"quotaExceeded":         true,
	"dailyLimitExceeded":    true,
	"rateLimitExceeded":     true,
	"userRateLimitExceeded": true,
	"servingLimitExceeded":  true,
}

// reasonCommentsDisabled is returned by the commentThreads endpoint for
// videos whose owner turned comments off. It says nothing about the
// credential's health.
const reasonCommentsDisabled = "commentsDisabled"

// Classify maps an upstream HTTP status and error reason to a failure class.
func Classify(status int, reason string) FailureClass {
	switch status {
	case http.StatusForbidden:
		if quotaReasons[reason] {
			return ClassQuotaExceeded
		}
		return ClassForbidden
	case http.StatusNotFound:
		return ClassNotFound
	default:
		return ClassOther
	}
}

// Recoverable reports whether the rotation loop should try the next
// credential after this failure.
func (c FailureClass) Recoverable() bool {
	return c == ClassQuotaExceeded || c == ClassForbidden
}

// IsBenignReason reports whether a failure reason is resource-specific and
// must not deactivate the credential.
func IsBenignReason(reason string) bool {
	return reason == reasonCommentsDisabled
}

func (c FailureClass) String() string {
	switch c {
	case ClassQuotaExceeded:
		return "quotaExceeded"
	case ClassForbidden:
		return "forbidden"
	case ClassNotFound:
		return "notFound"
	default:
		return "other"
	}
}
