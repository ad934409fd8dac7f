package config

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// InitLogger points the global zerolog logger at stderr, in the configured format, and
// additionally at a rotated log file when LogFile is set. The returned Closer releases the
// file.
func InitLogger(c Config, stderr io.Writer) (io.Closer, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}

	var writer io.Writer = stderr
	if c.LogFormat == "text" {
		writer = zerolog.ConsoleWriter{Out: stderr}
	}

	var closer io.Closer = nopCloser{}
	if c.LogFile != "" {
		file := &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		writer = io.MultiWriter(writer, zerolog.ConsoleWriter{NoColor: true, Out: file})
		closer = file
	}

	log.Logger = zerolog.New(writer).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
	return closer, nil
}
