//go:build tools

// Tool dependencies invoked through go generate, tracked in go.mod.
package main

import (
	_ "go.uber.org/mock/mockgen"
)
