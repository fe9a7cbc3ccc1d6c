package requestcontext

var _ error = rejectError{}

// rejectError stops the request with status and a public message.
type rejectError struct {
	status  int
	message string
}

func (r rejectError) Error() string {
	return r.message
}
