//go:build tools
// +build tools

package cvsuite

// Pins the versions of tools used with "go run ...": the Playwright CLI for
// browser installs in CI and refresh for reloading the fake portal while
// working on its views (see refresh.yml).
import (
	_ "github.com/networkteam/refresh"
	_ "github.com/playwright-community/playwright-go/cmd/playwright"
)
