package controllers

import "io"

// SetOutput replaces the writer the approved list is printed to.
func (it *DiscoverController) SetOutput(w io.Writer) {
	it.stdout = w
}

// SetInput replaces the reader used for "-".
func (it *ForkController) SetInput(r io.Reader) {
	it.stdin = r
}
