// Package stylize runs the external neural style transfer script that
// renders a museum photograph in the style of a painting.
package stylize
