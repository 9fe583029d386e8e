package llm

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const doneSentinel = "[DONE]"

// errStopStream ends readDataLines without reporting an error.
var errStopStream = errors.New("stop stream")

// readDataLines calls onData with the payload of every non-empty line of r.
// A leading "data:" prefix is stripped; comment (":") and "event:"/"id:"/
// "retry:" lines are ignored. Each line is handled on its own so a server
// that omits the blank separator between frames still streams correctly.
// onData may return errStopStream to end reading cleanly.
func readDataLines(r io.Reader, onData func(data string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if cbErr := handleLine(line, onData); cbErr != nil {
				if errors.Is(cbErr, errStopStream) {
					return nil
				}
				return cbErr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func handleLine(line string, onData func(string) error) error {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case strings.TrimSpace(line) == "":
		return nil
	case strings.HasPrefix(line, ":"),
		strings.HasPrefix(line, "event:"),
		strings.HasPrefix(line, "id:"),
		strings.HasPrefix(line, "retry:"):
		return nil
	}
	data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
	if data == "" {
		return nil
	}
	return onData(data)
}
