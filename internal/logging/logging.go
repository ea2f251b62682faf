// Package logging contains the singleton logger used across shoggoth.
// It deliberately has little else since it's a dependency everywhere.
package logging

import (
	"io"

	"gopkg.in/op/go-logging.v1"
)

// Log is the shared module logger.
var Log = logging.MustGetLogger("shoggoth")

// Verbosity is the number of -v flags given on the command line.
type Verbosity int

const formatStr = "%{time:15:04:05.000} %{level:7s}: %{message}"

// Level maps a verbosity count onto a go-logging level. Zero is WARNING.
func (v Verbosity) Level() logging.Level {
	l := int(logging.WARNING) + int(v)
	if l > int(logging.DEBUG) {
		l = int(logging.DEBUG)
	}
	if l < int(logging.CRITICAL) {
		l = int(logging.CRITICAL)
	}
	return logging.Level(l)
}

// Init points the shared logger at w with the given verbosity.
func Init(v Verbosity, w io.Writer) {
	backend := logging.NewBackendFormatter(logging.NewLogBackend(w, "", 0), logging.MustStringFormatter(formatStr))
	leveled := logging.AddModuleLevel(backend)
	leveled.SetLevel(v.Level(), "")
	Log.SetBackend(leveled)
}
