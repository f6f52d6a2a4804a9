// Package service implements the dashboard's business logic.
//
// DashboardService sits between the HTTP handlers and the analysis,
// repository and export layers. It owns the loaded dataset, decides what each
// stage of the dashboard exposes, and runs the callback that turns a filter
// state into a figure.
//
// # Event System
//
// Every served callback is recorded and published on the EventBus. The
// server forwards bus events to browsers over Server-Sent Events so open
// pages can show a live interaction counter.
package service
