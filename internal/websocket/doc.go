// Package websocket pushes dashboard updates to the browser.
//
// A session starts with a "connect" frame carrying the dataset coverage and
// selector choices. The page then sends "filter" frames whenever a control
// changes and receives a "dashboard" frame (or an "error" frame) that names
// the originating message in reply_to. Frames on a session are answered in
// the order they arrive.
package websocket
