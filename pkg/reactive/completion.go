package reactive

// Completion is the single terminal signal ending a subscription's value
// stream: either a normal finish or a failure carrying one error. At most one
// Completion is ever delivered per subscription, and no value follows it.
type Completion struct {
	failed bool
	err    error
}

// Finished returns the successful terminal signal.
func Finished() Completion { return Completion{} }

// Failed returns a terminal signal carrying err. A nil err is treated as a
// normal finish.
func Failed(err error) Completion {
	if err == nil {
		return Finished()
	}
	return Completion{failed: true, err: err}
}

// Err returns the carried error, or nil for a normal finish.
func (c Completion) Err() error { return c.err }

// IsFailure reports whether the completion carries an error.
func (c Completion) IsFailure() bool { return c.failed }

func (c Completion) String() string {
	if c.failed {
		return "failed(" + c.err.Error() + ")"
	}
	return "finished"
}
