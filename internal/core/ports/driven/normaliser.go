package driven

// BodySanitiser turns stored content markup into plain text safe to send
// to a language model. Script, style and embedded-frame content and
// markup comments are removed before anything else.
type BodySanitiser interface {
	Sanitise(markup string) string
}
