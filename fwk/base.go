package fwk

import (
	"fmt"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/sirupsen/logrus"
)

// NoColor disables the highlighting of names in log messages.
var NoColor = false

// Base provides a named logger to modules.
type Base struct {
	*logrus.Entry
	name  string
	start time.Time
}

func NewBase(name string) *Base {
	return &Base{
		Entry: logrus.WithField("module", name),
		name:  name,
		start: time.Now(),
	}
}

func (b *Base) Name() string {
	return b.name
}

// Elapsed returns the time since the creation of b.
func (b *Base) Elapsed() time.Duration {
	return time.Since(b.start)
}

// SetVerbose switches the standard logger to debug level.
func SetVerbose(v bool) {
	lvl := logrus.InfoLevel
	if v {
		lvl = logrus.DebugLevel
	}
	logrus.SetLevel(lvl)
}

// Color highlights v for terminal output.
func Color(v interface{}) string {
	if NoColor {
		return fmt.Sprint(v)
	}
	return aurora.Cyan(v).String()
}
