//go:build e2e

// Package e2e drives a real browser through the ACME demo bank.
//
// Run with:
//
//	go test -tags e2e ./e2e/...
//
// The visual test needs APPLITOOLS_API_KEY and is skipped without it.
// Unless ACME_SITE_URL is set the demo bank is served in-process.
package e2e
