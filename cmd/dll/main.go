// Package main provides C-compatible exports for the docxedit library.
// Build with: go build -buildmode=c-shared -o docxedit.dll
package main

/*
#include <stdlib.h>
#include <stdint.h>

// Result structure for operations that return data
typedef struct {
    char* data;
    int   data_len;
    char* error;
} DocxeditResult;
*/
import "C"

import (
	"bytes"
	"encoding/json"
	"unsafe"

	"github.com/logicossoftware/go-docxedit"
)

func main() {}

// DocxeditEnvelopeVersion returns the envelope format version written by this library.
//
//export DocxeditEnvelopeVersion
func DocxeditEnvelopeVersion() C.uint16_t {
	return C.uint16_t(docxedit.EnvelopeVersionV1)
}

// DocxeditFreeResult frees memory allocated by other Docxedit functions.
// Must be called to avoid memory leaks.
//
//export DocxeditFreeResult
func DocxeditFreeResult(result C.DocxeditResult) {
	if result.data != nil {
		C.free(unsafe.Pointer(result.data))
	}
	if result.error != nil {
		C.free(unsafe.Pointer(result.error))
	}
}

// DocxeditFreeString frees a C string allocated by Go.
//
//export DocxeditFreeString
func DocxeditFreeString(s *C.char) {
	if s != nil {
		C.free(unsafe.Pointer(s))
	}
}

func makeResult(data []byte) C.DocxeditResult {
	var result C.DocxeditResult
	if len(data) > 0 {
		result.data = (*C.char)(C.CBytes(data))
		result.data_len = C.int(len(data))
	}
	return result
}

func makeError(err error) C.DocxeditResult {
	var result C.DocxeditResult
	result.error = C.CString(err.Error())
	return result
}

func decodeBytes(data *C.char, dataLen C.int) (*docxedit.Document, error) {
	goData := C.GoBytes(unsafe.Pointer(data), dataLen)
	return docxedit.Decode(bytes.NewReader(goData))
}

// DocxeditDecode decodes a DOCX package and returns its blocks.
// Parameters:
//   - data: pointer to DOCX package bytes
//   - dataLen: length of the data
//   - legacy: non-zero selects the legacy parallel array format, zero the block JSON
//
// Returns DocxeditResult with a JSON string or error. Call DocxeditFreeResult when done.
//
//export DocxeditDecode
func DocxeditDecode(data *C.char, dataLen C.int, legacy C.int) C.DocxeditResult {
	doc, err := decodeBytes(data, dataLen)
	if err != nil {
		return makeError(err)
	}

	var out []byte
	if legacy != 0 {
		out, err = docxedit.MarshalLegacy(doc)
	} else {
		out, err = json.Marshal(doc)
	}
	if err != nil {
		return makeError(err)
	}

	return makeResult(out)
}

// DocxeditEncode builds a DOCX package from JSON blocks.
// Parameters:
//   - jsonData: pointer to the JSON bytes
//   - jsonLen: length of the JSON
//   - legacy: non-zero when the JSON uses the legacy parallel array format
//
// Returns DocxeditResult with package bytes or error. Call DocxeditFreeResult when done.
//
//export DocxeditEncode
func DocxeditEncode(jsonData *C.char, jsonLen C.int, legacy C.int) C.DocxeditResult {
	raw := C.GoBytes(unsafe.Pointer(jsonData), jsonLen)

	var doc *docxedit.Document
	if legacy != 0 {
		parsed, err := docxedit.UnmarshalLegacy(raw)
		if err != nil {
			return makeError(err)
		}
		doc = parsed
	} else {
		doc = new(docxedit.Document)
		if err := json.Unmarshal(raw, doc); err != nil {
			return makeError(err)
		}
	}

	var buf bytes.Buffer
	if err := docxedit.Encode(&buf, doc); err != nil {
		return makeError(err)
	}

	return makeResult(buf.Bytes())
}

// DocxeditPackEnvelope decodes a DOCX package and frames its blocks in an envelope.
// Parameters:
//   - data: pointer to DOCX package bytes
//   - dataLen: length of the data
//   - compression: compression algorithm (0=None, 1=ZIP, 2=ZSTD, 3=LZ4, 4=Brotli)
//
// Returns DocxeditResult with envelope bytes or error. Call DocxeditFreeResult when done.
//
//export DocxeditPackEnvelope
func DocxeditPackEnvelope(data *C.char, dataLen C.int, compression C.uint16_t) C.DocxeditResult {
	doc, err := decodeBytes(data, dataLen)
	if err != nil {
		return makeError(err)
	}

	var buf bytes.Buffer
	err = docxedit.EncodeEnvelope(&buf, doc,
		docxedit.WithEnvelopeCompression(docxedit.Compression(compression)),
	)
	if err != nil {
		return makeError(err)
	}

	return makeResult(buf.Bytes())
}

// DocxeditUnpackEnvelope reads an envelope and builds a DOCX package from its blocks.
//
// Returns DocxeditResult with package bytes or error. Call DocxeditFreeResult when done.
//
//export DocxeditUnpackEnvelope
func DocxeditUnpackEnvelope(data *C.char, dataLen C.int) C.DocxeditResult {
	goData := C.GoBytes(unsafe.Pointer(data), dataLen)

	doc, err := docxedit.DecodeEnvelope(bytes.NewReader(goData))
	if err != nil {
		return makeError(err)
	}

	var buf bytes.Buffer
	if err := docxedit.Encode(&buf, doc); err != nil {
		return makeError(err)
	}

	return makeResult(buf.Bytes())
}

// DocxeditValidate checks that a DOCX package can be decoded.
// Returns NULL on success, or an error message string on failure.
// Call DocxeditFreeString on the result if non-NULL.
//
//export DocxeditValidate
func DocxeditValidate(data *C.char, dataLen C.int) *C.char {
	if _, err := decodeBytes(data, dataLen); err != nil {
		return C.CString(err.Error())
	}
	return nil
}

// DocxeditGetBlockCount returns the number of blocks in a DOCX package.
// Returns -1 on error.
//
//export DocxeditGetBlockCount
func DocxeditGetBlockCount(data *C.char, dataLen C.int) C.int {
	doc, err := decodeBytes(data, dataLen)
	if err != nil {
		return -1
	}
	return C.int(len(doc.Blocks))
}
