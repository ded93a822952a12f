package sentiment

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/navossoc/bayesian"
	"github.com/rs/zerolog"
)

const (
	classPositive bayesian.Class = "pos"
	classNegative bayesian.Class = "neg"
)

// ErrEmptyCorpus is returned when training data contains no usable text.
var ErrEmptyCorpus = errors.New("sentiment: empty training corpus")

// Classifier is a two-class Naïve-Bayes model over bag-of-words features.
type Classifier struct {
	nb *bayesian.Classifier
}

// Train builds a classifier from labelled samples.
func Train(samples []Sample) (*Classifier, error) {
	nb := bayesian.NewClassifier(classPositive, classNegative)
	learned := 0
	for _, s := range samples {
		words := Tokenize(s.Text)
		if len(words) == 0 {
			continue
		}
		class := classNegative
		if s.Positive {
			class = classPositive
		}
		nb.Learn(words, class)
		learned++
	}
	if learned == 0 {
		return nil, ErrEmptyCorpus
	}
	return &Classifier{nb: nb}, nil
}

// Positive reports whether text is more likely positive than negative.
func (c *Classifier) Positive(text string) bool {
	_, likely, _ := c.nb.LogScores(Tokenize(text))
	return c.nb.Classes[likely] == classPositive
}

// Save writes the trained model to path, creating parent directories.
func (c *Classifier) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("classifier dir: %w", err)
	}
	if err := c.nb.WriteToFile(path); err != nil {
		return fmt.Errorf("write classifier %s: %w", path, err)
	}
	return nil
}

// Load reads a model previously written by Save.
func Load(path string) (*Classifier, error) {
	nb, err := bayesian.NewClassifierFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read classifier %s: %w", path, err)
	}
	return &Classifier{nb: nb}, nil
}

// LoadOrTrain loads the model at path. When that fails it trains a new one
// from the corpus at corpusPath (the built-in corpus when empty) and tries
// to save it back to path; a failed save is logged and otherwise ignored.
func LoadOrTrain(path, corpusPath string, log zerolog.Logger) (*Classifier, error) {
	clf, err := Load(path)
	if err == nil {
		log.Info().Str("path", path).Msg("classifier loaded")
		return clf, nil
	}
	log.Warn().Err(err).Msg("classifier not loaded, training a new one")

	samples, err := LoadCorpus(corpusPath)
	if err != nil {
		return nil, err
	}
	clf, err = Train(samples)
	if err != nil {
		return nil, err
	}
	log.Info().Int("samples", len(samples)).Msg("classifier trained")

	if err := clf.Save(path); err != nil {
		log.Warn().Err(err).Msg("could not save classifier")
	} else {
		log.Info().Str("path", path).Msg("classifier saved")
	}
	return clf, nil
}
