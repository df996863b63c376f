package reactor

import (
	"bufio"
	"io"
)

// maxLineBytes caps a single request line. Anything longer is a protocol
// violation and ends the connection via the scanner error path.
const maxLineBytes = 10000

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024), maxLineBytes)
	return scanner
}
