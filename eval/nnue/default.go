package nnue

import (
	"os"

	"github.com/rs/zerolog/log"
)

// LoadDefaultWeights tries a short list of conventional locations for
// a trained network file before falling back to an all-zero network,
// mirroring the reference engine's loadDefaultWeights search order
// (CWD first, then a dotfile-style home directory path).
func LoadDefaultWeights(candidates ...string) *Weights {
	paths := candidates
	if len(paths) == 0 {
		home, _ := os.UserHomeDir()
		paths = []string{
			"./hayabusa.nn",
			home + "/.hayabusa/hayabusa.nn",
		}
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		w, err := LoadWeights(f)
		f.Close()
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to load nnue weights")
			continue
		}
		log.Info().Str("path", path).Msg("loaded nnue weights")
		return w
	}

	log.Warn().Msg("no nnue weight file found, using zero-initialized network")
	return NewZeroWeights()
}
