// Package dispatch holds the built-in session.Dispatcher middleware:
// method gating, content negotiation and JSON body decoding.
package dispatch

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
	"github.com/dispatchgate/multiplex/internal/routing"
	"github.com/dispatchgate/multiplex/internal/session"
)

// MethodGate resolves "method.<lowercased-verb>" (falling back to
// "method.*") against entry and fails with kind NoRoute/405 if neither
// key is present, listing every defined method (upper-cased, sorted)
// in the Allow header.
func MethodGate(entry routing.Entry) session.Dispatcher {
	return session.DispatcherFunc(func(ctx context.Context, req *session.Request, sess *session.Session) error {
		verb := strings.ToLower(req.Method)
		if handlers, ok := entry["method."+verb]; ok {
			sess.Chain.Splice(handlers...)
			return nil
		}
		if handlers, ok := entry["method.*"]; ok {
			sess.Chain.Splice(handlers...)
			return nil
		}
		return gwerrors.New(gwerrors.KindNoRoute, "no route for method "+req.Method).
			WithStatus(http.StatusMethodNotAllowed).
			WithHeader("Allow", strings.Join(definedMethods(entry), ", "))
	})
}

// AcceptNegotiate parses the request's Accept header (comma-split,
// lowercased, each preference stripped at ';' and '*') and, for each
// client preference in order, finds the first "accept.<media>" route
// key whose media type is a prefix of the preference or vice versa.
// On no match it fails with kind NoRoute/406 listing the supported set.
func AcceptNegotiate(entry routing.Entry) session.Dispatcher {
	return session.DispatcherFunc(func(ctx context.Context, req *session.Request, sess *session.Session) error {
		preferences := splitMediaList(req.Headers.Get("Accept"))
		if len(preferences) == 0 {
			preferences = []string{"*/*"}
		}
		for _, pref := range preferences {
			for key, handlers := range entry {
				media, ok := strings.CutPrefix(key, "accept.")
				if !ok {
					continue
				}
				if mediaMatches(media, pref) {
					sess.Chain.Splice(handlers...)
					return nil
				}
			}
		}
		return gwerrors.New(gwerrors.KindNoRoute, "no acceptable media type").
			WithStatus(http.StatusNotAcceptable).
			WithHeader("Accept", strings.Join(definedMedia(entry, "accept."), ", "))
	})
}

// ContentTypeNegotiate matches the request's single Content-Type value
// against "content-type.<media>" route keys with the same wildcard
// tolerance as AcceptNegotiate. On no match it fails with kind
// NoRoute/415 listing the supported set.
func ContentTypeNegotiate(entry routing.Entry) session.Dispatcher {
	return session.DispatcherFunc(func(ctx context.Context, req *session.Request, sess *session.Session) error {
		client := stripMediaParams(req.Headers.Get("Content-Type"))
		if client == "" {
			client = "*/*"
		}
		for key, handlers := range entry {
			media, ok := strings.CutPrefix(key, "content-type.")
			if !ok {
				continue
			}
			if mediaMatches(media, client) {
				sess.Chain.Splice(handlers...)
				return nil
			}
		}
		return gwerrors.New(gwerrors.KindNoRoute, "unsupported media type").
			WithStatus(http.StatusUnsupportedMediaType).
			WithHeader("Accept", strings.Join(definedMedia(entry, "content-type."), ", "))
	})
}

// mediaMatches implements a sharp wildcard tolerance, with client first
// cut at its own '*':
// supported.startsWith(client) || client.startsWith(supported.split('*')[0]).
func mediaMatches(supported, client string) bool {
	client, _, _ = strings.Cut(client, "*")
	if strings.HasPrefix(supported, client) {
		return true
	}
	base, _, _ := strings.Cut(supported, "*")
	return strings.HasPrefix(client, base)
}

func stripMediaParams(value string) string {
	media, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(media))
}

func splitMediaList(header string) []string {
	if header == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if m := stripMediaParams(p); m != "" {
			out = append(out, m)
		}
	}
	return out
}

func definedMethods(entry routing.Entry) []string {
	var methods []string
	for key := range entry {
		if verb, ok := strings.CutPrefix(key, "method."); ok && verb != "*" {
			methods = append(methods, strings.ToUpper(verb))
		}
	}
	sort.Strings(methods)
	return methods
}

func definedMedia(entry routing.Entry, prefix string) []string {
	var media []string
	for key := range entry {
		if m, ok := strings.CutPrefix(key, prefix); ok {
			media = append(media, m)
		}
	}
	sort.Strings(media)
	return media
}
