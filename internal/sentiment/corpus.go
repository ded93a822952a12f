package sentiment

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed corpus.txt
var defaultCorpus string

// Sample is one labelled training text.
type Sample struct {
	Text     string
	Positive bool
}

// ReadCorpus parses a corpus where the first line is a header and each
// following line is "<label><sep><text>". Label "1" marks a positive text,
// anything else a negative one.
func ReadCorpus(r io.Reader, sep string) ([]Sample, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var samples []Sample
	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" {
			continue
		}
		label, text, ok := strings.Cut(raw, sep)
		if !ok {
			return nil, fmt.Errorf("corpus line %d: missing %q separator", line, sep)
		}
		samples = append(samples, Sample{
			Text:     strings.TrimSpace(text),
			Positive: strings.TrimSpace(label) == "1",
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	return samples, nil
}

// LoadCorpus reads the corpus at path, or the built-in corpus when path is empty.
func LoadCorpus(path string) ([]Sample, error) {
	if path == "" {
		return ReadCorpus(strings.NewReader(defaultCorpus), ";")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("corpus file: %w", err)
	}
	defer f.Close()
	return ReadCorpus(f, ";")
}
