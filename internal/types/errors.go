package types

import "fmt"

// MissingInputError means a required media asset or location was absent when
// a pipeline step was invoked. No network call is made.
type MissingInputError struct {
	What string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input: %s", e.What)
}

// SubmissionError is a non-success response from the dubbing API at submit
// time, carrying the upstream response body.
type SubmissionError struct {
	Body string
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("failed to initiate dubbing job: %s", e.Body)
}

// FetchError is a non-success response when downloading the dubbed audio.
type FetchError struct {
	Body string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch dubbed audio: %s", e.Body)
}

// JobFailedError means the dubbing job reached a terminal non-success status.
type JobFailedError struct {
	Status string
	Reason string
}

func (e *JobFailedError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "Unknown"
	}
	return fmt.Sprintf("dubbing job failed with status: %s. Reason: %s", e.Status, reason)
}

// InferenceError is a non-success condition from any inference gateway call,
// carrying the upstream message. The gateway performs no retries.
type InferenceError struct {
	Op  string
	Msg string
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference %s failed: %s", e.Op, e.Msg)
}

// MalformedOutputError means no plausible JSON span was found in model
// output, or the span did not parse.
type MalformedOutputError struct {
	Msg string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %s", e.Msg)
}

// TimeoutError means the dubbing poll loop exhausted its attempt ceiling
// without observing a terminal status.
type TimeoutError struct {
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("dubbing job still running after %d status checks", e.Attempts)
}

// StaleResultError is the internal guard raised when a result's run token no
// longer matches the active run. It is dropped at the session boundary, never
// surfaced to the user.
type StaleResultError struct {
	Have RunToken
	Want RunToken
}

func (e *StaleResultError) Error() string {
	return fmt.Sprintf("stale result: token %d, current run is %d", e.Have, e.Want)
}
