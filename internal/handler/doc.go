// Package handler implements the HTTP layer of the iris dashboard.
//
// DashboardHandler serves the page layout, the callback endpoint
// (POST /api/update) and the read-only endpoints around it: the raw dataset,
// summary statistics, exports of the filtered rows and server-rendered
// charts.
//
// Middleware provides panic recovery, CORS, structured request logging and
// Prometheus request metrics. Chain composes them around a ServeMux.
//
// # Response Format
//
// Success responses return JSON, except exports and charts which use the
// content type of their format. Error responses return JSON with an
// {error, details} structure: 400 for bad input, 404 for unknown formats,
// 409 when the configured stage does not offer the feature, 422 for charts
// with nothing to draw and 500 otherwise.
package handler
