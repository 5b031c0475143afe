package docxedit

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

type errReader struct{}

func (errReader) Read(p []byte) (int, error) { return 0, io.ErrUnexpectedEOF }

func TestCompressHelpers_ErrorPaths(t *testing.T) {
	// zip Create error via injection
	origCreate := zipCreate
	zipCreate = func(_ *zip.Writer, _ string) (io.Writer, error) { return nil, io.ErrClosedPipe }
	if err := zipCompressNamed(io.Discard, envelopeEntryName, []byte("x")); err == nil {
		zipCreate = origCreate
		t.Fatal("expected error")
	}
	zipCreate = origCreate

	// zip entry.Write error branch: make Create succeed but return a writer that errors on Write.
	zipCreate = func(_ *zip.Writer, _ string) (io.Writer, error) { return errWriter{}, nil }
	if err := zipCompressNamed(io.Discard, envelopeEntryName, []byte("x")); err == nil {
		zipCreate = origCreate
		t.Fatal("expected error")
	}
	zipCreate = origCreate

	// zip Close error via injection
	origClose := zipClose
	zipClose = func(_ *zip.Writer) error { return io.ErrClosedPipe }
	if _, err := zipCompress([]byte("x")); err == nil {
		zipClose = origClose
		t.Fatal("expected error")
	}
	zipClose = origClose

	// zip write error
	if err := zipCompressNamed(errWriter{}, envelopeEntryName, []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	// lz4 write error
	if err := lz4CompressTo(errWriter{}, []byte("x")); err == nil {
		t.Fatal("expected error")
	}
	// lz4 Close error via injection
	origLZ4Close := lz4Close
	lz4Close = func(_ *lz4.Writer) error { return io.ErrClosedPipe }
	if _, err := lz4Compress([]byte("x")); err == nil {
		lz4Close = origLZ4Close
		t.Fatal("expected error")
	}
	lz4Close = origLZ4Close

	// brotli write error via injection
	origBrotliWrite := brotliWrite
	brotliWrite = func(_ *brotli.Writer, _ []byte) (int, error) { return 0, io.ErrClosedPipe }
	if err := brotliCompressTo(io.Discard, []byte("x")); err == nil {
		brotliWrite = origBrotliWrite
		t.Fatal("expected error")
	}
	brotliWrite = origBrotliWrite

	// brotli Close error via injection
	origBrotliClose := brotliClose
	brotliClose = func(_ *brotli.Writer) error { return io.ErrClosedPipe }
	if _, err := brotliCompress([]byte("x")); err == nil {
		brotliClose = origBrotliClose
		t.Fatal("expected error")
	}
	brotliClose = origBrotliClose
}

func TestZstdConstructorErrors(t *testing.T) {
	origWriter := newZstdWriter
	newZstdWriter = func() (*zstd.Encoder, error) { return nil, io.ErrClosedPipe }
	if _, err := zstdCompress([]byte("x")); err == nil {
		newZstdWriter = origWriter
		t.Fatal("expected error")
	}
	newZstdWriter = origWriter

	origReader := newZstdReader
	newZstdReader = func() (*zstd.Decoder, error) { return nil, io.ErrClosedPipe }
	if _, err := zstdDecompress([]byte("x"), 1); err == nil {
		newZstdReader = origReader
		t.Fatal("expected error")
	}
	newZstdReader = origReader
}

func TestZIPDecompressOpenAndReadErrors(t *testing.T) {
	packed, err := zipCompress([]byte("abc"))
	if err != nil {
		t.Fatal(err)
	}

	origOpen := zipOpen
	zipOpen = func(_ *zip.File) (io.ReadCloser, error) { return nil, io.ErrClosedPipe }
	if _, err := zipDecompress(packed, 3); err == nil {
		zipOpen = origOpen
		t.Fatal("expected error")
	}
	zipOpen = origOpen

	origReadAll := readAll
	readAll = func(io.Reader) ([]byte, error) { return nil, io.ErrUnexpectedEOF }
	if _, err := zipDecompress(packed, 3); err == nil {
		readAll = origReadAll
		t.Fatal("expected error")
	}
	readAll = origReadAll
}

func TestEncode_InjectedFailuresWriteNothing(t *testing.T) {
	check := func(t *testing.T) {
		t.Helper()
		var buf bytes.Buffer
		if err := Encode(&buf, sampleDoc()); err == nil {
			t.Fatal("expected error")
		}
		if buf.Len() != 0 {
			t.Fatalf("expected no output, got %d bytes", buf.Len())
		}
	}

	t.Run("marshal", func(t *testing.T) {
		orig := xmlMarshal
		defer func() { xmlMarshal = orig }()
		xmlMarshal = func(any) ([]byte, error) { return nil, io.ErrClosedPipe }
		check(t)
	})
	t.Run("create", func(t *testing.T) {
		orig := zipCreate
		defer func() { zipCreate = orig }()
		zipCreate = func(_ *zip.Writer, _ string) (io.Writer, error) { return nil, io.ErrClosedPipe }
		check(t)
	})
	t.Run("write", func(t *testing.T) {
		orig := zipCreate
		defer func() { zipCreate = orig }()
		zipCreate = func(_ *zip.Writer, _ string) (io.Writer, error) { return errWriter{}, nil }
		check(t)
	})
	t.Run("close", func(t *testing.T) {
		orig := zipClose
		defer func() { zipClose = orig }()
		zipClose = func(_ *zip.Writer) error { return io.ErrClosedPipe }
		check(t)
	})
}

func TestDecode_InjectedFailures(t *testing.T) {
	data := createTestDOCX(t, `<w:p/>`)

	_, err := Decode(errReader{})
	if !errors.Is(err, ErrFormat) || !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrFormat wrapping the read error, got %v", err)
	}

	origOpen := zipOpen
	zipOpen = func(_ *zip.File) (io.ReadCloser, error) { return nil, io.ErrClosedPipe }
	_, err = Decode(bytes.NewReader(data))
	zipOpen = origOpen
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}

func TestEnvelope_InjectedJSONFailures(t *testing.T) {
	origMarshal := jsonMarshal
	jsonMarshal = func(any) ([]byte, error) { return nil, io.ErrClosedPipe }
	err := EncodeEnvelope(io.Discard, sampleDoc())
	jsonMarshal = origMarshal
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected marshal error, got %v", err)
	}
	if _, err := MarshalLegacy(sampleDoc()); err != nil {
		t.Fatalf("MarshalLegacy after restore: %v", err)
	}
}
