package transform

// Transformation mutates a view in place. A failing transformation may leave
// the view partially modified; callers discard it and start again from the
// base graph.
type Transformation interface {
	Transform(v *View) error
}
