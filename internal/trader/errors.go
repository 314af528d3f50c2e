package trader

import "errors"

var (
	// ErrNotReady rejects a mutating call issued outside the Ready state.
	ErrNotReady = errors.New("session not ready")

	// ErrNoTransport rejects a call issued before Connect established a
	// driver.
	ErrNoTransport = errors.New("transport not established")

	// ErrMalformedEntrustID rejects a correlation token that does not split
	// into exactly three fields.
	ErrMalformedEntrustID = errors.New("malformed entrust id")

	// ErrBusinessType rejects an entrust whose business classification the
	// called operation does not serve.
	ErrBusinessType = errors.New("unsupported business type")
)
