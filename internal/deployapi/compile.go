package deployapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// CompileRequest is a Solidity source to compile remotely.
type CompileRequest struct {
	SourceCode   string `json:"sourceCode"`
	ContractName string `json:"contractName"`
	Optimization bool   `json:"optimization"`
}

// Compilation is the compiler output for one contract.
type Compilation struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     string          `json:"bytecode"`
}

type compileResponse struct {
	Success     bool         `json:"success"`
	Compilation *Compilation `json:"compilation"`
	Error       string       `json:"error"`
}

// Compile sends source to the compile-only endpoint.
func (c *Client) Compile(ctx context.Context, req CompileRequest) (*Compilation, error) {
	if req.SourceCode == "" {
		return nil, errors.New("source code is required")
	}
	var resp compileResponse
	if err := c.do(ctx, http.MethodPost, "/api/compile-only", req, &resp); err != nil {
		return nil, fmt.Errorf("POST /api/compile-only: %w", err)
	}
	if !resp.Success || resp.Compilation == nil {
		msg := resp.Error
		if msg == "" {
			msg = "compilation failed"
		}
		return nil, &HTTPError{Status: http.StatusOK, Message: msg, Decoded: resp.Error != ""}
	}
	if resp.Compilation.ContractName == "" {
		resp.Compilation.ContractName = req.ContractName
	}
	return resp.Compilation, nil
}
