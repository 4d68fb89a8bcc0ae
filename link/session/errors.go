package session

import "fmt"

// TimeoutError reports a reply that did not reach its expected length before
// the timeout. Short reads are routine while polling, so dispatcher calls
// report them through Reply.OK; Reply.Err converts them into this error for
// callers that treat them as failures.
type TimeoutError struct {
	Expected int
	Got      int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for reply: received %d of %d bytes", e.Got, e.Expected)
}

// PartialBatchAckError reports a batch in which fewer acknowledgements
// arrived than commands were sent.
type PartialBatchAckError struct {
	Expected int
	Got      int
}

func (e *PartialBatchAckError) Error() string {
	return fmt.Sprintf("partial batch acknowledgement: received %d of %d acks", e.Got, e.Expected)
}
