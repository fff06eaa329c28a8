package tui

// StatusKind indicates severity for status messages/spinners.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusSuccess
	StatusWarn
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusSuccess:
		return "success"
	case StatusWarn:
		return "warn"
	case StatusError:
		return "error"
	default:
		return "info"
	}
}
