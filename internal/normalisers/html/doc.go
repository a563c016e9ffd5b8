// Package html provides a BodySanitiser for wiki storage-format markup.
// It drops scripts, styles, embedded frames and comments, strips the
// remaining tags and decodes entities so only readable text reaches the model.
package html
