// Package engine indexes the OWID country/day dataset and answers point and
// range queries over it.
//
// An Index is built once by Load and never mutated afterwards, so any number of
// goroutines may query it.
package engine
