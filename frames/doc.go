// Package frames decodes animations into ordered, full-size RGBA frames and
// keeps them in a Store owned by one packing pipeline.
//
// Frames are always *image.NRGBA with their origin at (0, 0). Straight alpha
// keeps PNG round trips exact, which the rest of the pipeline relies on when
// it copies pixels between frames and atlas pages.
package frames
