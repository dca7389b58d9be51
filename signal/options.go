package signal

import (
	"github.com/iotaledger/streamkit/logger"
	"github.com/iotaledger/streamkit/options"
)

// Option configures a Signal.
type Option = options.Option[settings]

// WithReplay keeps the last size next events and the terminating event and replays them to every observer that
// attaches later, before any live event. A size of 0 disables replay.
func WithReplay(size int) Option {
	return func(s *settings) {
		if size < 0 {
			size = 0
		}

		s.replaySize = size
	}
}

// WithLogger sets the logger that reports grammar violations.
func WithLogger(log *logger.Logger) Option {
	return func(s *settings) {
		s.log = log
	}
}

type settings struct {
	replaySize int
	log        *logger.Logger
}
