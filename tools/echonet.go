// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/target"
)

// echoNetModule is the network probe: fetch a URL and echo the
// response, or resolve a hostname. All network traffic flows through
// the guarded dialer, so under a no-network policy the first connect
// or resolve attempt is denied before any packet leaves the process.
func echoNetModule() target.Module {
	return target.Module{
		Name:  "echo-net-tool",
		Entry: echoNet,
		Callables: map[string]target.ToolFunc{
			"fetch":   echoNet,
			"resolve": echoNetResolve,
		},
	}
}

func echoNet(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <url>", argv[0])
	}
	url := argv[1]
	if !strings.Contains(url, "://") {
		url = "https://" + url
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}

	response, err := rt.HTTPClient().Do(request)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer response.Body.Close()

	fmt.Fprintln(rt.Stdout(), response.Status)
	if _, err := io.Copy(rt.Stdout(), response.Body); err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return nil
}

func echoNetResolve(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <host>", argv[0])
	}
	addresses, err := rt.LookupHost(ctx, argv[1])
	if err != nil {
		return fmt.Errorf("resolving %s: %w", argv[1], err)
	}
	for _, address := range addresses {
		fmt.Fprintln(rt.Stdout(), address)
	}
	return nil
}
