// Package filter implements resource filtering for reslist. It provides the
// multi-term, case-insensitive name query used by the projector and a label
// selector for narrowing the list by group.
//
// The package is built around the [Filter] interface and [Chain] type, which
// allow composable, ordered filter application with a record of why each
// resource was dropped.
package filter
