/*
Package server implements msgpack IPC between a rendering layer and the
suggestion pipeline.

Frames are bare msgpack maps, one after another, on stdin and stdout. The
server greets with {"status": "ready"} and then answers every request with its
id. Results of searches and selections arrive later as notifications without
an id, in the order the pipeline commits them.

# Requests

	{"id": "1", "action": "input", "v": "10230 jasp"}
	{"id": "2", "action": "options", "o": {"region": "ca", "types": ["address"]}}
	{"id": "3", "action": "request", "v": "jasper ave", "o": {"lang": "fr"}}
	{"id": "4", "action": "select", "i": 0}
	{"id": "5", "action": "display", "i": 0}
	{"id": "6", "action": "refresh"}
	{"id": "7", "action": "health"}

"input" accepts any value; only strings are searched, anything else clears
the list. "request" searches v
with its own options and leaves the stored options alone. Indexes count from
zero into the latest suggestion list.

# Responses

	{"id": "1", "status": "ok"}
	{"id": "5", "status": "ok", "text": "10230 Jasper Ave, Edmonton, AB, Canada"}
	{"id": "9", "e": "unknown action: frob", "c": 400}

# Notifications

	{"ev": "options", "s": [{"p": {...}, "mh": "<b>1023</b>0", "sh": "...", "h": "..."}]}
	{"ev": "details", "d": {"place": {...}, "address": {"city": "Edmonton", ...}}}
	{"ev": "error", "e": "search \"10230 jasp\": ..."}

A "details" notification with a nil d means the service resolved nothing.
*/
package server

import (
	"github.com/bastiangx/placeserve/pkg/places"
	"github.com/bastiangx/placeserve/pkg/suggest"
)

// Actions understood by the server.
const (
	ActionInput   = "input"
	ActionOptions = "options"
	ActionRequest = "request"
	ActionSelect  = "select"
	ActionDisplay = "display"
	ActionRefresh = "refresh"
	ActionHealth  = "health"
)

// Notification events.
const (
	EventOptions = "options"
	EventDetails = "details"
	EventError   = "error"
)

// Request is one client frame. Which fields matter depends on Action.
type Request struct {
	ID      string                 `msgpack:"id"`
	Action  string                 `msgpack:"action"`
	Value   any                    `msgpack:"v,omitempty"`
	Options *places.RequestOptions `msgpack:"o,omitempty"`
	Index   *int                   `msgpack:"i,omitempty"`
}

// Response acknowledges a request.
type Response struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
	Text   string `msgpack:"text,omitempty"`
	Token  string `msgpack:"token,omitempty"`
}

// ErrorResponse holds basic error information for a rejected request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// OptionsNotification carries a new suggestion list.
type OptionsNotification struct {
	Event       string               `msgpack:"ev"`
	Suggestions []suggest.Suggestion `msgpack:"s"`
}

// DetailsNotification carries the outcome of a selection.
type DetailsNotification struct {
	Event   string                `msgpack:"ev"`
	Details *suggest.PlaceDetails `msgpack:"d"`
}

// ErrorNotification carries a failed search or selection.
type ErrorNotification struct {
	Event string `msgpack:"ev"`
	Error string `msgpack:"e"`
}
