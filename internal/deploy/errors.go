package deploy

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
)

// ErrDeployInProgress matches *DeployInProgressError with errors.Is.
var ErrDeployInProgress = errors.New("deploy already in progress")

// DeployInProgressError rejects a Deploy call while another attempt runs.
type DeployInProgressError struct {
	Attempt string
	Phase   Phase
}

func (e *DeployInProgressError) Error() string {
	return fmt.Sprintf("deploy %s already in progress (%s)", e.Attempt, e.Phase)
}

func (e *DeployInProgressError) Is(target error) bool { return target == ErrDeployInProgress }

// Failure kinds written into DeployResult.Kind.
const (
	KindValidation         = "ValidationError"
	KindNetworkUnsupported = "NetworkUnsupported"
	KindAPI                = "DeployApiError"
	KindTimeout            = "DeployTimeoutError"
	KindNetwork            = "NetworkError"
	KindDirect             = "DirectDeployError"
	KindCancelled          = "Cancelled"
)

// ValidationError reports a draft field that cannot be deployed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// classify returns the failure kind of a remote error and whether a direct
// deploy may be tried instead. Only decoded API rejections and caller
// cancellation are final.
func classify(err error) (kind string, fallback bool) {
	var apiErr *deployapi.DeployAPIError
	var timeoutErr *deployapi.DeployTimeoutError
	switch {
	case errors.Is(err, context.Canceled):
		return KindCancelled, false
	case errors.As(err, &timeoutErr):
		return KindTimeout, true
	case errors.As(err, &apiErr) && apiErr.Decoded:
		return KindAPI, false
	case errors.As(err, &apiErr):
		return KindAPI, true
	default:
		return KindNetwork, true
	}
}
