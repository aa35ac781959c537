package workflow

import (
	"fmt"
	"net/url"
	"strings"
)

// ResolveContinuation re-roots the path and query of ref on base. The engine
// reports continuation URLs with its own internal host, which is not
// reachable from here, so only the path is trusted. With an empty base an
// absolute ref is used as is.
func ResolveContinuation(base, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty continuation reference")
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse continuation %q: %w", ref, err)
	}

	base = strings.TrimSpace(base)
	if base == "" {
		if !u.IsAbs() {
			return "", fmt.Errorf("relative continuation %q without a base address", ref)
		}
		return ref, nil
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return "", fmt.Errorf("invalid engine base address %q", base)
	}

	out := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return out, nil
}
