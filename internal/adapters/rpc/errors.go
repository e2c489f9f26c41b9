package rpc

import (
	"net"
	"net/http"
	"strings"

	"craftlink/go-backend/internal/domains/contracts"
)

// Service error codes by failure class. Parse and protocol errors keep the
// standard JSON-RPC codes.
const (
	codeInternal     = -32000
	codeInvalidInput = -32001
	codeInvalidState = -32002
	codeNotFound     = -32004
	codeRateLimited  = -32005
)

func rpcInvalidParams() *rpcError {
	return &rpcError{Code: -32602, Message: "invalid params"}
}

func mapServiceError(err error) *rpcError {
	switch contracts.ErrorClass(err) {
	case contracts.ClassInvalidInput:
		return &rpcError{Code: codeInvalidInput, Message: err.Error()}
	case contracts.ClassInvalidState:
		return &rpcError{Code: codeInvalidState, Message: err.Error()}
	case contracts.ClassNotFound:
		return &rpcError{Code: codeNotFound, Message: err.Error()}
	default:
		return &rpcError{Code: codeInternal, Message: err.Error()}
	}
}

func errorClassOf(code int) string {
	switch code {
	case codeInvalidInput:
		return contracts.ClassInvalidInput
	case codeInvalidState:
		return contracts.ClassInvalidState
	case codeNotFound:
		return contracts.ClassNotFound
	case codeRateLimited:
		return "rate_limited"
	case -32601, -32602:
		return "protocol"
	default:
		return contracts.ClassInternal
	}
}

func peerKey(r *http.Request) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if remote == "" {
		return "ip:unknown"
	}
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return "ip:" + remote
	}
	if strings.TrimSpace(host) == "" {
		return "ip:unknown"
	}
	return "ip:" + host
}
