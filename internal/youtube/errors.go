package youtube

import "errors"

var (
	// ErrServiceDisabled is returned while the global service switch is off.
	// No credentials or cache are touched in that state.
	ErrServiceDisabled = errors.New("service is disabled")

	// ErrNotFound means upstream has no such resource.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest covers terminal upstream failures that are neither
	// quota nor missing-resource conditions.
	ErrBadRequest = errors.New("upstream request failed")

	// ErrCommentsDisabled is the benign commentThreads failure for videos
	// whose owner turned comments off. The credential stays in rotation.
	ErrCommentsDisabled = errors.New("comments are disabled for this video")
)
