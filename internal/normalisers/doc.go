// Package normalisers turns raw wiki markup into plain text for the
// summary pipeline.
package normalisers
