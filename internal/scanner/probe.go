package scanner

import (
	"bytes"
	"errors"
	"io"
	"os"
	"unicode/utf8"
)

// probeSize is how much of a file is sniffed.
const probeSize = 1024

// IsBinary reports whether the file at path looks like binary content.
// Callers treat a non-nil error as binary.
func IsBinary(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return true, err
	}
	defer file.Close()

	buffer := make([]byte, probeSize)
	n, err := io.ReadFull(file, buffer)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return true, err
	}
	return looksBinary(buffer[:n]), nil
}

func looksBinary(buffer []byte) bool {
	if len(buffer) == 0 {
		return false
	}
	if bytes.IndexByte(buffer, 0) >= 0 {
		return true
	}
	if validUTF8Prefix(buffer) {
		return false
	}

	nonPrintable := 0
	for _, b := range buffer {
		if !isPrintable(b) {
			nonPrintable++
		}
	}
	return float64(nonPrintable)/float64(len(buffer)) > 0.3
}

// validUTF8Prefix tolerates a multi-byte rune cut off by the probe window.
func validUTF8Prefix(buffer []byte) bool {
	if utf8.Valid(buffer) {
		return true
	}
	for cut := 1; cut < utf8.UTFMax && cut < len(buffer); cut++ {
		if utf8.Valid(buffer[:len(buffer)-cut]) && !utf8.FullRune(buffer[len(buffer)-cut:]) {
			return true
		}
	}
	return false
}

func isPrintable(b byte) bool {
	return (b >= 32 && b <= 126) || b == '\n' || b == '\r' || b == '\t' || b == '\f'
}
