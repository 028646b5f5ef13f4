package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// ContractParam is a typed argument for a contract invocation.
type ContractParam struct {
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// AddressParam builds an address-typed parameter.
func AddressParam(addr string) ContractParam {
	return ContractParam{Type: "Hash160", Value: addr}
}

// IntParam builds an integer-typed parameter.
func IntParam(v int64) ContractParam {
	return ContractParam{Type: "Integer", Value: strconv.FormatInt(v, 10)}
}

// StackItem is one value returned on the invocation stack.
type StackItem struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// InvokeResult is the outcome of a contract invocation.
type InvokeResult struct {
	State     string      `json:"state"`
	Exception string      `json:"exception"`
	Stack     []StackItem `json:"stack"`
	Tx        string      `json:"tx,omitempty"`
}

// InvokeFunction invokes a contract method and returns the execution result.
// A non-HALT VM state is returned as an error.
func (c *Client) InvokeFunction(ctx context.Context, contractHash, method string, params []ContractParam) (*InvokeResult, error) {
	args := []interface{}{contractHash, method, params}
	result, err := c.Call(ctx, "invokefunction", args)
	if err != nil {
		return nil, err
	}

	var invokeResult InvokeResult
	if err := json.Unmarshal(result, &invokeResult); err != nil {
		return nil, err
	}

	if invokeResult.State != "HALT" {
		return nil, fmt.Errorf("%s failed: %s", method, invokeResult.Exception)
	}

	return &invokeResult, nil
}

// IntFromStack decodes the top stack item as an integer.
func IntFromStack(res *InvokeResult) (int64, error) {
	if res == nil || len(res.Stack) == 0 {
		return 0, fmt.Errorf("empty invocation stack")
	}

	var raw string
	if err := json.Unmarshal(res.Stack[0].Value, &raw); err != nil {
		// Some nodes return integers unquoted.
		var n int64
		if err2 := json.Unmarshal(res.Stack[0].Value, &n); err2 != nil {
			return 0, fmt.Errorf("decode integer stack item: %w", err)
		}
		return n, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

// BoolFromStack decodes the top stack item as a boolean.
func BoolFromStack(res *InvokeResult) (bool, error) {
	if res == nil || len(res.Stack) == 0 {
		return false, fmt.Errorf("empty invocation stack")
	}

	var b bool
	if err := json.Unmarshal(res.Stack[0].Value, &b); err != nil {
		return false, fmt.Errorf("decode boolean stack item: %w", err)
	}
	return b, nil
}
