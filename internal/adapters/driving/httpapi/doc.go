// Package httpapi exposes question answering and page previews over HTTP.
//
// Routes:
//
//	POST /chat            {question, top_k} -> answer and cited passages
//	GET  /preview         ?key=<storage key>&page=<n> -> PNG
//	GET  /documents/url   ?key=<storage key> -> presigned download URL
//	GET  /ping            health and route list
//	GET  /                liveness
package httpapi
