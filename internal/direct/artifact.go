package direct

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/tokenforge/internal/deployapi"
)

// ErrNoBytecode is returned for artifacts of interfaces or abstract contracts.
var ErrNoBytecode = errors.New("artifact has no deployable bytecode")

// Artifact is a compiled token contract ready to deploy.
type Artifact struct {
	Name     string
	ABI      abi.ABI
	Bytecode []byte
}

// LoadArtifact reads a Hardhat ({"bytecode":"0x..."}) or Foundry
// ({"bytecode":{"object":"0x..."}}) artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read artifact file: %w", err)
	}
	art, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return art, nil
}

// ParseArtifact decodes artifact JSON.
func ParseArtifact(data []byte) (*Artifact, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("artifact file is empty")
	}
	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, errors.New(`artifact has no "abi" array`)
	}
	if len(raw.Bytecode) == 0 {
		return nil, ErrNoBytecode
	}
	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, err
	}
	return newArtifact(raw.ContractName, raw.ABI, bcHex)
}

// FromCompilation builds an artifact from a remote compile.
func FromCompilation(c *deployapi.Compilation) (*Artifact, error) {
	if c == nil {
		return nil, errors.New("no compilation")
	}
	return newArtifact(c.ContractName, c.ABI, c.Bytecode)
}

func newArtifact(name string, abiJSON []byte, bytecodeHex string) (*Artifact, error) {
	parsed, err := abi.JSON(bytes.NewReader(abiJSON))
	if err != nil {
		return nil, fmt.Errorf("parsing artifact ABI: %w", err)
	}
	bytecodeHex = strings.TrimSpace(bytecodeHex)
	if bytecodeHex == "" || bytecodeHex == "0x" {
		return nil, ErrNoBytecode
	}
	if !strings.HasPrefix(bytecodeHex, "0x") {
		bytecodeHex = "0x" + bytecodeHex
	}
	code, err := hexutil.Decode(bytecodeHex)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in artifact: %w", err)
	}
	return &Artifact{Name: name, ABI: parsed, Bytecode: code}, nil
}

// extractBytecodeHex accepts the Hardhat string form and the Foundry
// {"object": "0x..."} form.
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str, nil
	}
	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return obj.Object, nil
	}
	return "", errors.New(`bytecode field is neither a hex string nor a {"object":"0x..."} object`)
}
