// Package domain defines the core types for the iris dashboard.
//
// This package contains the immutable measurement table, the filter state a
// browser sends on every interaction, and the plot and layout descriptions the
// server sends back.
//
// # Core Types
//
// Dataset is the iris table: four numeric measurement columns and one
// categorical species column. It is built once by NewDataset and never mutated;
// every accessor that returns a slice returns a copy.
//
// FilterState carries the species selection, two inclusive ranges and the
// regression toggle. Selection accepts null, a single string, or a list.
//
// Figure is a Plotly-compatible plot description. Component is the layout tree
// the page renders for a given stage.
//
// # Design Principles
//
// - No database or network dependencies
// - Values validated at construction, not at use
package domain
