//go:build tools
// +build tools

// Package tools pins the code generators run by `go generate` (mockgen) so go.mod
// tracks them like any other dependency.
package shop_relay

import (
	_ "go.uber.org/mock/mockgen"
)
