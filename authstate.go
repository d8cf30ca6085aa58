package pushover

// authStatus is the cached outcome of a credential probe. It starts
// unknown, is resolved lazily on first use, and drops back to unknown
// whenever the token changes or a request produces fresh evidence.
type authStatus int

const (
	authUnknown authStatus = iota
	authOK
	authRejected
)

func (s authStatus) String() string {
	switch s {
	case authOK:
		return "authenticated"
	case authRejected:
		return "rejected"
	default:
		return "unknown"
	}
}
