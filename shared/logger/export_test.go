package logger

import "io"

// SetOutput swaps the writer InitLogger and SetLogLevel build on and returns a restore func.
func SetOutput(w io.Writer) func() {
	previous := output
	output = w

	return func() { output = previous }
}
