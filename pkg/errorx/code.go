package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	BadRequest       Code = 100001
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005

	// Unavailable is returned when a transaction keeps conflicting. The request may be retried
	// with the same operation id.
	Unavailable     Code = 100008
	NotImplemented  Code = 100009
	TooManyRequests Code = 100010
)
