package env

import (
	"fmt"
	"image"
)

// Display is a window-like presentation target sized to the engine frame.
type Display interface {
	Open(width, height int) error
	Present(frame image.Image) error
	Close() error
}

// DisplayOpener constructs a display on first render.
type DisplayOpener func() (Display, error)

// Surface is an optional display resource owned by a single coordinator.
// It is either Unacquired (display == nil) or Acquired.
type Surface struct {
	open    DisplayOpener
	display Display
}

// NewSurface returns an unacquired surface. A nil opener makes the surface
// headless: Acquire is a no-op and Present does nothing.
func NewSurface(open DisplayOpener) *Surface {
	return &Surface{open: open}
}

// Headless reports whether no display backend is configured.
func (s *Surface) Headless() bool { return s.open == nil }

// Acquired reports whether a display is currently held.
func (s *Surface) Acquired() bool { return s.display != nil }

// Acquire opens a display of the given size unless one is already held.
func (s *Surface) Acquire(width, height int) error {
	if s.display != nil || s.open == nil {
		return nil
	}
	d, err := s.open()
	if err != nil {
		return fmt.Errorf("open display: %w", err)
	}
	if err := d.Open(width, height); err != nil {
		return fmt.Errorf("open display %dx%d: %w", width, height, err)
	}
	s.display = d
	return nil
}

// Present shows frame on the held display, if any.
func (s *Surface) Present(frame image.Image) error {
	if s.display == nil {
		return nil
	}
	return s.display.Present(frame)
}

// Release closes the held display and returns to Unacquired. Releasing an
// unacquired surface is a no-op.
func (s *Surface) Release() error {
	if s.display == nil {
		return nil
	}
	d := s.display
	s.display = nil
	return d.Close()
}
