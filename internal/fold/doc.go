// Package fold turns predicted secondary structures into stems, loops and
// tails and classifies each structure by its expected binding behaviour.
//
// Positions are 1-based throughout, matching the predictor's .ct output.
// Nothing here knows about the search or about output formats.
package fold
