package deployapi

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidChainID is returned for chain IDs that are not positive.
	ErrInvalidChainID = errors.New("invalid chain id")
	// ErrTransactionFailed is returned by WaitForTransaction when the API
	// reports the transaction as failed.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrStillPending is returned by WaitForTransaction when every attempt saw
	// a pending transaction.
	ErrStillPending = errors.New("transaction still pending")
)

// HTTPError is a non-2xx (or success:false) answer from the deploy API.
// Decoded is set when the body carried an "error" message.
type HTTPError struct {
	Status  int
	Message string
	Decoded bool
}

func (e *HTTPError) Error() string { return e.Message }

// NetworkFetchError wraps any failure of the supported-networks request.
type NetworkFetchError struct {
	Err error
}

func (e *NetworkFetchError) Error() string {
	return fmt.Sprintf("fetching supported networks: %v", e.Err)
}

func (e *NetworkFetchError) Unwrap() error { return e.Err }

// DeployTimeoutError is returned when the deploy request exceeds the client
// timeout.
type DeployTimeoutError struct {
	Timeout time.Duration
}

func (e *DeployTimeoutError) Error() string {
	return fmt.Sprintf("deploy request timed out after %s", e.Timeout)
}

// DeployAPIError is an error answer to the deploy request. Decoded errors are
// business rejections (bad symbol, unsupported params); undecoded ones carry
// only the HTTP status text.
type DeployAPIError struct {
	Status  int
	Message string
	Decoded bool
}

func (e *DeployAPIError) Error() string { return e.Message }
