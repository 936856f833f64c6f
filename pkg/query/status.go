package query

// Status is the lifecycle state of a cache entry.
type Status int

const (
	Pending Status = iota // entry created, no fetch started
	Loading               // first fetch in flight, no data yet
	Ready                 // data loaded
	Error                 // last fetch failed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is what Use returns for one render.
type Result[T any] struct {
	Data   T
	Status Status
	Err    error

	// IsLoading is true until the first fetch settles.
	IsLoading bool

	// IsFetching is true while any fetch for the key is in flight,
	// including background refetches of loaded data.
	IsFetching bool
}
