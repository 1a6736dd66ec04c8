// Package imaging loads cached images and writes the scaled previews placed
// next to the stylized output.
package imaging
