// Copyright 2025 James Ross
package adapter

import (
	"fmt"
	"strings"
)

// FromURL dispatches a configured adapter URL to a concrete, unopened
// Adapter, mirroring the original library's grammar: amqp(s):// builds an
// AMQP adapter, list:// a ListAdapter, std://out and std://err the stdout
// and stderr file adapters, noop:// or default:// (or the empty string) a
// NoopAdapter, file://<path> a FileAdapter, and http:// or https:// an
// HTTPAdapter. Anything else, including a bare file path, is ErrUnknownURL.
func FromURL(url string) (Adapter, error) {
	switch {
	case strings.HasPrefix(url, "amqp"):
		return NewAMQP(url), nil
	case strings.HasPrefix(url, "list"):
		return NewList(), nil
	case url == "std://out":
		return NewStdout(), nil
	case url == "std://err":
		return NewStderr(), nil
	case strings.HasPrefix(url, "noop") || strings.HasPrefix(url, "default") || url == "":
		return NewNoop(), nil
	case strings.HasPrefix(url, "file://"):
		return NewFile(strings.TrimPrefix(url, "file://")), nil
	case strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://"):
		return NewHTTP(url, "", 0, 0, 0), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownURL, url)
	}
}
