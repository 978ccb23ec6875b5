package output

// Translator renders user-facing messages from the message catalogue.
type Translator interface {
	// T renders key for locale; data fills template placeholders and may be nil.
	// Unknown keys render as the key itself.
	T(locale, key string, data map[string]any) string
}
