// Package isochrone parses stellar population tables.
//
// The supported layout is the PARSEC/CMD export family: whitespace
// tables with '#' comment headers whose last line names the columns,
// holding one or more (logAge, Z) blocks. Column names are aliased so
// PARSEC, MIST and Dartmouth spellings all resolve to the same
// canonical keys; ages auto-detect linear years versus log years and
// [M/H] converts to a Z mass fraction.
//
// A compact demo table is embedded so the pipeline runs without any
// external download.
package isochrone
