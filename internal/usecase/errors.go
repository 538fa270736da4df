package usecase

import "errors"

// Pipeline result kinds. Every error returned by PlaylistService wraps exactly
// one of these.
var (
	// ErrInvalidConfig is returned when the playlist ID or API key is missing or malformed.
	// No cache or network access happens in that case.
	ErrInvalidConfig = errors.New("invalid playlist configuration")

	// ErrFetchFailure is returned when the YouTube request fails in any way.
	ErrFetchFailure = errors.New("playlist fetch failed")

	// ErrEmptyResult is returned when the playlist yields no displayable videos.
	ErrEmptyResult = errors.New("playlist has no valid videos")
)

// ResultKind classifies a pipeline outcome for metrics and HTTP mapping.
type ResultKind string

const (
	KindSuccess       ResultKind = "success"
	KindInvalidConfig ResultKind = "invalid_config"
	KindFetchFailure  ResultKind = "fetch_failure"
	KindEmptyResult   ResultKind = "empty_result"
	KindUnknown       ResultKind = "unknown"
)

// Kind maps err to its result kind. A nil error is a success.
func Kind(err error) ResultKind {
	switch {
	case err == nil:
		return KindSuccess
	case errors.Is(err, ErrInvalidConfig):
		return KindInvalidConfig
	case errors.Is(err, ErrFetchFailure):
		return KindFetchFailure
	case errors.Is(err, ErrEmptyResult):
		return KindEmptyResult
	default:
		return KindUnknown
	}
}
