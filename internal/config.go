package internal

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config is the relay's environment-driven configuration. Defaults fit
// local development; production sets everything explicitly.
type Config struct {
	Host           string `env:"HOST,default=localhost"`
	Port           int    `env:"PORT,default=3000" validate:"gt=0"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true" validate:"required"`
	LogLevel       string `env:"LOG_LEVEL,default=info"`

	// HistoryLimit bounds the snapshot a new session receives.
	HistoryLimit int `env:"HISTORY_LIMIT,default=50" validate:"gt=0"`
	// SendBufferSize bounds the per-session outbound queue; a session
	// that falls this far behind starts dropping events.
	SendBufferSize int `env:"SEND_BUFFER_SIZE,default=256" validate:"gt=0"`
	// MaxBodyLength caps message bodies at the transport edge. Zero
	// disables the cap.
	MaxBodyLength int `env:"MAX_BODY_LENGTH,default=2048" validate:"gte=0"`

	CensorReplacement string        `env:"CENSOR_REPLACEMENT,default=*"`
	TimelineCapacity  int           `env:"TIMELINE_CAPACITY,default=100" validate:"gt=0"`
	ReportInterval    time.Duration `env:"REPORT_INTERVAL,default=30s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`

	// DebugPort serves the /inspect page when non-zero.
	DebugPort int `env:"DEBUG_PORT,default=0"`
}

func (c Config) Validate() error {
	return validate.Struct(c)
}

// CharacterRune parses the single-character replacement setting.
func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CENSOR_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
