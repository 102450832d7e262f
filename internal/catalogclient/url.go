// Package catalogclient talks to the catalog's REST API: it builds
// endpoint URLs, signs and executes requests, and decodes the JSON
// responses into the wire shapes in internal/catalogmodel.
package catalogclient

import (
	"net/url"
	"strings"

	apperrors "github.com/datapipeline/trigger-coordinator/pkg/errors"
)

// specialSchemes are the URL schemes whose path defaults to "/" rather than
// empty when no path is given, matching the browser URL standard's notion
// of a "special" scheme.
var specialSchemes = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true, "file": true,
}

// ConstructEndpointURL joins an endpoint prefix with pathExtension segments,
// collapsing any trailing slashes on the prefix first. If pathExtension is
// empty and the prefix resolves to an empty path on a scheme that defaults
// to "/", the result is left ending in a single slash to avoid a
// server-side redirect; a prefix that already has no path keeps none.
func ConstructEndpointURL(prefix string, pathExtension []string) (string, error) {
	u, err := url.Parse(prefix)
	if err != nil {
		return "", apperrors.URLParseFailure("endpoint prefix is not a valid url", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", apperrors.URLParseFailure("endpoint prefix must be an absolute url", nil)
	}

	special := specialSchemes[u.Scheme]
	segments := stripTrailingEmpty(rawPathSegments(u.Path, special))
	segments = append(segments, pathExtension...)

	switch {
	case len(segments) == 0 && special:
		u.Path = "/"
	case len(segments) == 0:
		u.Path = ""
	default:
		u.Path = "/" + strings.Join(segments, "/")
	}
	return u.String(), nil
}

// rawPathSegments splits a URL path on "/", preserving empty trailing
// segments so repeated slashes can be detected and stripped. An empty path
// yields one empty segment for special schemes (mirroring their implicit
// "/") and none otherwise.
func rawPathSegments(path string, special bool) []string {
	if path == "" {
		if special {
			return []string{""}
		}
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}

// stripTrailingEmpty drops every trailing empty segment, collapsing any
// number of repeated trailing slashes down to none.
func stripTrailingEmpty(segments []string) []string {
	end := len(segments)
	for end > 0 && segments[end-1] == "" {
		end--
	}
	return segments[:end]
}

// Basenames returns the final "/"-separated component of each path, in
// order. A path with no slash is returned unchanged.
func Basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			out[i] = p[idx+1:]
		} else {
			out[i] = p
		}
	}
	return out
}
