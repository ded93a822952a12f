package sentiment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/model"
)

var tinyCorpus = []Sample{
	{Text: "love love wonderful", Positive: true},
	{Text: "sweet lovely", Positive: true},
	{Text: "happy joyful", Positive: true},
	{Text: "hate hate awful", Positive: false},
	{Text: "idiot stupid", Positive: false},
	{Text: "mad angry", Positive: false},
}

func trainTiny(t *testing.T) *Classifier {
	t.Helper()
	clf, err := Train(tinyCorpus)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	return clf
}

func TestClassifier_Positive(t *testing.T) {
	clf := trainTiny(t)
	tests := []struct {
		text string
		want bool
	}{
		{"I love you!", true},
		{"I hate you!", false},
		{"I wont talk to you. Idiot!", false},
		{"you are sweet", true},
		{"I'm happy", true},
		{"i'm mad!", false},
	}
	for _, tt := range tests {
		if got := clf.Positive(tt.text); got != tt.want {
			t.Errorf("Positive(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestTrain_EmptyCorpus(t *testing.T) {
	if _, err := Train(nil); err != ErrEmptyCorpus {
		t.Fatalf("err = %v, want ErrEmptyCorpus", err)
	}
}

func TestClassifier_SaveLoad(t *testing.T) {
	clf := trainTiny(t)
	path := filepath.Join(t.TempDir(), "nested", "classifier.gob")

	if err := clf.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, text := range []string{"love it", "hate it", "so sweet", "angry idiot"} {
		if loaded.Positive(text) != clf.Positive(text) {
			t.Errorf("loaded classifier disagrees on %q", text)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "hello_hello.gob")); err == nil {
		t.Fatal("expected error for missing classifier file")
	}
}

func TestLoadOrTrain_TrainsAndSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classifier.gob")

	clf, err := LoadOrTrain(path, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("LoadOrTrain: %v", err)
	}
	if clf == nil {
		t.Fatal("nil classifier")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("classifier was not saved: %v", err)
	}

	again, err := LoadOrTrain(path, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("second LoadOrTrain: %v", err)
	}
	if again.Positive("I love this song") != clf.Positive("I love this song") {
		t.Error("reloaded classifier disagrees with trained one")
	}
}

func TestLoadOrTrain_MissingCorpus(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadOrTrain(filepath.Join(dir, "classifier.gob"), filepath.Join(dir, "nope.txt"), zerolog.Nop())
	if err == nil {
		t.Fatal("expected error when neither classifier nor corpus exist")
	}
}

func TestReadCorpus(t *testing.T) {
	in := "label;text\n1;I love it\n0; I hate it \n\n2;meh\n"
	samples, err := ReadCorpus(strings.NewReader(in), ";")
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}
	if len(samples) != 3 {
		t.Fatalf("len = %d, want 3 (header skipped)", len(samples))
	}
	if !samples[0].Positive || samples[0].Text != "I love it" {
		t.Errorf("samples[0] = %+v", samples[0])
	}
	if samples[1].Positive || samples[1].Text != "I hate it" {
		t.Errorf("samples[1] = %+v", samples[1])
	}
	if samples[2].Positive {
		t.Error("labels other than 1 are negative")
	}
}

func TestReadCorpus_MissingSeparator(t *testing.T) {
	if _, err := ReadCorpus(strings.NewReader("header\nno separator here\n"), ";"); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadCorpus_BuiltIn(t *testing.T) {
	samples, err := LoadCorpus("")
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	var pos, neg int
	for _, s := range samples {
		if s.Positive {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		t.Errorf("built-in corpus has %d positive / %d negative samples", pos, neg)
	}
}

func TestTokenize(t *testing.T) {
	words := Tokenize("They LOVE the band, and them!")
	for _, w := range words {
		switch w {
		case "they", "them", "band", "the", "and":
			t.Errorf("stop word %q kept in %v", w, words)
		}
	}
	found := false
	for _, w := range words {
		if w == "love" {
			found = true
		}
	}
	if !found {
		t.Errorf("content word dropped: %v", words)
	}
}

func TestAnalyzer_ClassifyComments(t *testing.T) {
	a := NewAnalyzer(trainTiny(t), zerolog.Nop())
	texts := []string{"I love you!", "I hate you!", "I wont talk to you. Idiot!", "you are sweet", "I'm happy", "i'm mad!"}
	comments := make([]model.Comment, len(texts))
	for i, text := range texts {
		comments[i] = model.Comment{
			ID:        string(rune('a' + i)),
			VideoID:   "dQw4w9WgXcQ",
			Content:   text,
			Published: time.Now(),
		}
	}

	vs, cs, err := a.ClassifyComments(comments)
	if err != nil {
		t.Fatalf("ClassifyComments: %v", err)
	}
	want := []bool{true, false, false, true, true, false}
	for i, c := range cs {
		if c.Positive != want[i] {
			t.Errorf("comment %d (%q) positive = %v, want %v", i, texts[i], c.Positive, want[i])
		}
		if c.CommentID != comments[i].ID || c.VideoID != "dQw4w9WgXcQ" {
			t.Errorf("comment %d ids = %+v", i, c)
		}
	}
	if vs.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %q", vs.VideoID)
	}
	if vs.Positive != 0.5 || vs.Negative != 0.5 {
		t.Errorf("ratios = %v/%v, want 0.5/0.5", vs.Positive, vs.Negative)
	}
	if vs.Verdict != model.Neutral {
		t.Errorf("verdict = %q, want neutral", vs.Verdict)
	}
}

func TestAnalyzer_NoComments(t *testing.T) {
	a := NewAnalyzer(trainTiny(t), zerolog.Nop())
	if _, _, err := a.ClassifyComments(nil); err != ErrNoComments {
		t.Fatalf("err = %v, want ErrNoComments", err)
	}
}
