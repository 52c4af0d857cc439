package deployapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
)

// Transaction statuses reported by the API.
const (
	TxPending   = "pending"
	TxConfirmed = "confirmed"
	TxFailed    = "failed"
)

// TxStatus is the API view of a transaction.
type TxStatus struct {
	Hash          string `json:"hash"`
	Status        string `json:"status"`
	BlockNumber   Text   `json:"blockNumber"`
	GasUsed       Text   `json:"gasUsed"`
	Confirmations Number `json:"confirmations"`
}

// Done reports whether the transaction reached a final status.
func (s *TxStatus) Done() bool { return s.Status == TxConfirmed || s.Status == TxFailed }

// TransactionStatus fetches the status of hash on chainID.
func (c *Client) TransactionStatus(ctx context.Context, hash string, chainID int64) (*TxStatus, error) {
	if chainID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChainID, chainID)
	}
	if hash == "" {
		return nil, errors.New("transaction hash is required")
	}
	path := "/transaction/" + hash + "/" + strconv.FormatInt(chainID, 10)
	var out TxStatus
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if out.Hash == "" {
		out.Hash = hash
	}
	return &out, nil
}

var errPending = errors.New("pending")

// WaitForTransaction polls TransactionStatus until the transaction is
// confirmed or failed. onUpdate, if set, sees every successful answer. A failed
// transaction returns its status together with ErrTransactionFailed; running
// out of attempts returns ErrStillPending or the last request error.
func (c *Client) WaitForTransaction(ctx context.Context, hash string, chainID int64, onUpdate func(*TxStatus)) (*TxStatus, error) {
	var last *TxStatus

	status, err := retry.DoWithData(
		func() (*TxStatus, error) {
			s, err := c.TransactionStatus(ctx, hash, chainID)
			if err != nil {
				if errors.Is(err, ErrInvalidChainID) {
					return nil, retry.Unrecoverable(err)
				}
				return nil, err
			}
			last = s
			if onUpdate != nil {
				onUpdate(s)
			}
			if !s.Done() {
				return nil, errPending
			}
			return s, nil
		},
		retry.Context(ctx),
		retry.Attempts(c.pollAttempts),
		retry.DelayType(func(_ uint, err error, _ *retry.Config) time.Duration {
			if errors.Is(err, errPending) {
				return c.pendingDelay
			}
			return c.errorDelay
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if !errors.Is(err, errPending) {
				c.lggr.Debugw("Transaction status check failed", "attempt", n+1, "err", err)
			}
		}),
	)

	switch {
	case err == nil && status.Status == TxFailed:
		return status, fmt.Errorf("%w (hash: %s)", ErrTransactionFailed, hash)
	case err == nil:
		return status, nil
	case ctx.Err() != nil:
		return last, fmt.Errorf("waiting for %s: %w", hash, ctx.Err())
	case errors.Is(err, errPending):
		return last, fmt.Errorf("%w after %d attempts (hash: %s)", ErrStillPending, c.pollAttempts, hash)
	default:
		return last, err
	}
}
