package docxedit

import "github.com/klauspost/compress/flate"

type readConfig struct {
	limits       Limits
	lenientCells bool
}

type ReadOption func(*readConfig)

func WithReadLimits(l Limits) ReadOption {
	return func(c *readConfig) { c.limits = l }
}

// WithLenientCells makes Decode read a table cell without any text node as "".
// By default such a cell fails with ErrFormat.
func WithLenientCells(v bool) ReadOption {
	return func(c *readConfig) { c.lenientCells = v }
}

type writeConfig struct {
	limits      Limits
	level       int
	bulletStyle string
	title       string
	creator     string
}

type WriteOption func(*writeConfig)

func WithWriteLimits(l Limits) WriteOption {
	return func(c *writeConfig) { c.limits = l }
}

// WithPackageCompression sets the deflate level used for the package entries.
// Levels outside flate.HuffmanOnly..flate.BestCompression fall back to the default.
func WithPackageCompression(level int) WriteOption {
	return func(c *writeConfig) { c.level = level }
}

// WithBulletStyle sets the paragraph style id applied to bullet paragraphs.
func WithBulletStyle(styleID string) WriteOption {
	return func(c *writeConfig) { c.bulletStyle = styleID }
}

// WithCoreProperties sets the title and creator recorded in docProps/core.xml.
func WithCoreProperties(title, creator string) WriteOption {
	return func(c *writeConfig) {
		c.title = title
		c.creator = creator
	}
}

type envelopeConfig struct {
	limits      Limits
	compression Compression
}

type EnvelopeOption func(*envelopeConfig)

func WithEnvelopeLimits(l Limits) EnvelopeOption {
	return func(c *envelopeConfig) { c.limits = l }
}

func WithEnvelopeCompression(comp Compression) EnvelopeOption {
	return func(c *envelopeConfig) { c.compression = comp }
}

func (c *writeConfig) deflateLevel() int {
	if c.level < flate.HuffmanOnly || c.level > flate.BestCompression {
		return flate.DefaultCompression
	}
	return c.level
}
