// Package app serves the starter over HTTP.
//
// Every page request creates a live Session: a goroutine event loop that
// owns the session's user store, query client, translator, router location
// and bootstrap gate. The first render is returned inside the HTML shell;
// the browser then opens /_live?session=<id> and receives a full render
// frame each time something the last render read changes.
//
// Inbound frames are JSON objects with a type:
//
//	{"type":"setUser","username":"john.doe"}
//	{"type":"logout"}
//	{"type":"invalidate","key":["greeting"]}
//	{"type":"navigate","path":"/"}
//
// Outbound frames are {"type":"render","html","lang","class","title"} and
// {"type":"error","code","message"}.
package app
