package tracker

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Notifier receives a short summary when a scan finishes.
type Notifier interface {
	Notify(title, message string)
}

// LogNotifier writes notifications to a logger at info level.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) Notify(title, message string) {
	n.Logger.Info().Str("title", title).Msg(message)
}

// WriterNotifier prints "title: message" lines.
type WriterNotifier struct {
	W io.Writer
}

func (n WriterNotifier) Notify(title, message string) {
	fmt.Fprintf(n.W, "%s: %s\n", title, message)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) {
	f(title, message)
}
