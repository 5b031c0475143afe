package docxedit

type Limits struct {
	MaxPackageSize          uint64 // zipped package bytes read by Decode
	MaxPartSize             uint64 // word/document.xml bytes after decompression
	MaxEnvelopeSize         uint64 // envelope payload length as stored
	MaxEnvelopeUncompressed uint64 // envelope JSON bytes after decompression
	MaxBlocks               int
	MaxRunsPerParagraph     int
	MaxCellsPerTable        int
}

func defaultLimits() Limits {
	return Limits{
		MaxPackageSize:          256 << 20, // 256 MiB
		MaxPartSize:             512 << 20, // 512 MiB
		MaxEnvelopeSize:         256 << 20,
		MaxEnvelopeUncompressed: 512 << 20,
		MaxBlocks:               1_000_000,
		MaxRunsPerParagraph:     100_000,
		MaxCellsPerTable:        1_000_000,
	}
}

// DefaultLimits returns the limits applied when none are configured.
func DefaultLimits() Limits {
	return defaultLimits()
}

func (l Limits) withDefaults() Limits {
	d := defaultLimits()
	if l.MaxPackageSize == 0 {
		l.MaxPackageSize = d.MaxPackageSize
	}
	if l.MaxPartSize == 0 {
		l.MaxPartSize = d.MaxPartSize
	}
	if l.MaxEnvelopeSize == 0 {
		l.MaxEnvelopeSize = d.MaxEnvelopeSize
	}
	if l.MaxEnvelopeUncompressed == 0 {
		l.MaxEnvelopeUncompressed = d.MaxEnvelopeUncompressed
	}
	if l.MaxBlocks == 0 {
		l.MaxBlocks = d.MaxBlocks
	}
	if l.MaxRunsPerParagraph == 0 {
		l.MaxRunsPerParagraph = d.MaxRunsPerParagraph
	}
	if l.MaxCellsPerTable == 0 {
		l.MaxCellsPerTable = d.MaxCellsPerTable
	}
	return l
}
