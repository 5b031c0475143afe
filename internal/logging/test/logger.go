package test

import (
	"bytes"
	"fmt"
	"io/ioutil"

	"github.com/logicossoftware/go-docxedit/internal/logging"
)

func NewNullLogger() logging.Logger {
	logger := logging.New()
	_ = logger.SetFormat(logging.FormatTextSimple)
	logger.SetOutput(ioutil.Discard)

	return logger
}

func NewBufferedLogger() (logging.Logger, fmt.Stringer) {
	buf := new(bytes.Buffer)

	logger := logging.New()
	_ = logger.SetFormat(logging.FormatTextSimple)
	logger.SetOutput(buf)

	return logger, buf
}
