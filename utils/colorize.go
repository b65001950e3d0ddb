package utils

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var noColorize atomic.Bool

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		noColorize.Store(true)
	}
}

// SetColorize toggles colorization of pretty printed analysis entities.
func SetColorize(enabled bool) {
	noColorize.Store(!enabled)
}

// Colorized reports whether pretty printers currently emit ANSI colors.
func Colorized() bool {
	return !noColorize.Load()
}

func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if noColorize.Load() {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

// Painter builds a colorizing print function that respects SetColorize at
// call time.
func Painter(attrs ...color.Attribute) func(...interface{}) string {
	c := color.New(attrs...)
	c.EnableColor()
	sprint := c.SprintFunc()
	return func(is ...interface{}) string {
		return CanColorize(sprint)(is...)
	}
}
