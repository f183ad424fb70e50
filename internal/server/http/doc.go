// Package httpserver exposes the HTTP surface: the public verification
// pages and the JSON API for issuing codes, recording sales, and admin
// listing, plus health and Prometheus endpoints.
package httpserver
