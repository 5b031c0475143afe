package docxedit

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// EnvelopeMagic opens every envelope.
var EnvelopeMagic = [8]byte{'D', 'X', 'I', 'R', '\r', '\n', 0x1A, '\n'}

const (
	EnvelopeVersionV1 uint16 = 1

	envelopeHeaderSize = 24

	envelopeFlagCompressionMask    uint16 = 0x000F
	envelopeFlagHasUncompressedLen uint16 = 0x0010
)

type envelopeHeader struct {
	Magic      [8]byte
	Version    uint16
	Flags      uint16
	Reserved   uint32
	PayloadLen uint64
}

func (h envelopeHeader) compression() Compression {
	return Compression(h.Flags & envelopeFlagCompressionMask)
}

func readEnvelopeHeader(r io.Reader) (envelopeHeader, error) {
	var buf [envelopeHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return envelopeHeader{}, err
	}
	var h envelopeHeader
	copy(h.Magic[:], buf[0:8])
	h.Version = binary.LittleEndian.Uint16(buf[8:10])
	h.Flags = binary.LittleEndian.Uint16(buf[10:12])
	h.Reserved = binary.LittleEndian.Uint32(buf[12:16])
	h.PayloadLen = binary.LittleEndian.Uint64(buf[16:24])
	return h, nil
}

func writeEnvelopeHeader(w io.Writer, h envelopeHeader) error {
	var buf [envelopeHeaderSize]byte
	copy(buf[0:8], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint16(buf[10:12], h.Flags)
	binary.LittleEndian.PutUint32(buf[12:16], h.Reserved)
	binary.LittleEndian.PutUint64(buf[16:24], h.PayloadLen)
	_, err := w.Write(buf[:])
	return err
}

// Function variables for testing injection.
var (
	jsonMarshal   = json.Marshal
	jsonUnmarshal = json.Unmarshal
)

// EncodeEnvelope writes doc to w as a framed, optionally compressed JSON payload.
//
// The document is validated with the same rules as Encode before anything is written.
// By default the payload is compressed with Zstandard; use WithEnvelopeCompression to
// pick another algorithm or CompNone to store it as is.
func EncodeEnvelope(w io.Writer, doc *Document, opts ...EnvelopeOption) error {
	cfg := envelopeConfig{
		limits:      defaultLimits(),
		compression: CompZSTD,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	if err := validateDocument(doc, cfg.limits); err != nil {
		return err
	}
	raw, err := jsonMarshal(doc)
	if err != nil {
		return err
	}
	if uint64(len(raw)) > cfg.limits.MaxEnvelopeUncompressed {
		return fmt.Errorf("%w: payload too large", ErrLimitExceeded)
	}
	flags, payload, err := compressPayload(cfg.compression, raw)
	if err != nil {
		return err
	}
	if uint64(len(payload)) > cfg.limits.MaxEnvelopeSize {
		return fmt.Errorf("%w: envelope too large", ErrLimitExceeded)
	}

	var buf bytes.Buffer
	buf.Grow(envelopeHeaderSize + len(payload))
	if err := writeEnvelopeHeader(&buf, envelopeHeader{
		Magic:      EnvelopeMagic,
		Version:    EnvelopeVersionV1,
		Flags:      flags,
		PayloadLen: uint64(len(payload)),
	}); err != nil {
		return err
	}
	buf.Write(payload)
	_, err = buf.WriteTo(w)
	return err
}

// DecodeEnvelope reads an envelope written by EncodeEnvelope.
//
// The header must carry EnvelopeMagic, version 1 and zero reserved bits. The payload
// length is checked against Limits.MaxEnvelopeSize before it is read, and the
// decompressed size against Limits.MaxEnvelopeUncompressed. The decoded document is
// validated like an encoder input.
func DecodeEnvelope(r io.Reader, opts ...EnvelopeOption) (*Document, error) {
	cfg := envelopeConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	h, err := readEnvelopeHeader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}
	if h.Magic != EnvelopeMagic {
		return nil, ErrInvalidMagic
	}
	if h.Version != EnvelopeVersionV1 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Reserved != 0 {
		return nil, fmt.Errorf("%w: reserved bits set", ErrInvalidHeader)
	}
	if h.Flags&^(envelopeFlagCompressionMask|envelopeFlagHasUncompressedLen) != 0 {
		return nil, fmt.Errorf("%w: unknown flags 0x%04x", ErrInvalidHeader, h.Flags)
	}
	if h.PayloadLen > cfg.limits.MaxEnvelopeSize {
		return nil, fmt.Errorf("%w: envelope payload length %d", ErrLimitExceeded, h.PayloadLen)
	}

	payload := make([]byte, h.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	raw, err := decompressPayload(h.compression(), h.Flags, payload, cfg.limits.MaxEnvelopeUncompressed)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := jsonUnmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := validateDocument(&doc, cfg.limits); err != nil {
		return nil, err
	}
	return &doc, nil
}
