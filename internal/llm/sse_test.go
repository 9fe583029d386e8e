package llm

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestReadDataLines(t *testing.T) {
	in := strings.Join([]string{
		": keep-alive",
		"event: message",
		"data: one",
		"",
		"data:two",
		"bare-line",
		"data: ",
		"data: [DONE]",
		"data: after-done",
	}, "\r\n")

	var got []string
	err := readDataLines(strings.NewReader(in), func(d string) error {
		if d == doneSentinel {
			return errStopStream
		}
		got = append(got, d)
		return nil
	})
	if err != nil {
		t.Fatalf("readDataLines: %v", err)
	}
	want := []string{"one", "two", "bare-line"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q; want %q", got, want)
	}
}

func TestReadDataLines_LastLineWithoutNewline(t *testing.T) {
	var got []string
	_ = readDataLines(strings.NewReader("data: a\ndata: b"), func(d string) error {
		got = append(got, d)
		return nil
	})
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("got %q", got)
	}
}

type failingReader struct{ r io.Reader }

func (f *failingReader) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	if err == io.EOF {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestReadDataLines_PropagatesErrors(t *testing.T) {
	err := readDataLines(&failingReader{strings.NewReader("data: x\n")}, func(string) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Fatalf("want read error, got %v", err)
	}

	boom := errors.New("boom")
	err = readDataLines(strings.NewReader("data: x\n"), func(string) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("callback error should surface, got %v", err)
	}
}
