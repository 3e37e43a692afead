package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

const LogFileName = "podcast.log"

type Options struct {
	Debug     bool
	LogFolder string    // file sink is disabled when empty
	Console   io.Writer // defaults to os.Stderr
}

// Setup builds a logger writing every enabled level to the console and Info
// and above to a rotating file in LogFolder. The returned closer releases the
// log file.
func Setup(opts Options) (*slog.Logger, io.Closer, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}),
	}

	var closer io.Closer = nopCloser{}
	if opts.LogFolder != "" {
		if err := os.MkdirAll(opts.LogFolder, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log folder: %w", err)
		}

		file := &lumberjack.Logger{
			Filename:   filepath.Join(opts.LogFolder, LogFileName),
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			LocalTime:  true,
		}
		closer = file
		handlers = append(handlers, slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
