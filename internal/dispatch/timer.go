// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"fmt"
	"io"
	"time"
)

// Timed runs fn, writes how long it took to w, and returns the elapsed time
// together with fn's error. The line is written even when fn fails.
func Timed(w io.Writer, label string, fn func() error) (time.Duration, error) {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	if w != nil {
		if label != "" {
			fmt.Fprintf(w, "%s: ", label)
		}
		fmt.Fprintf(w, "Time taken: %.2f seconds\n", elapsed.Seconds())
	}
	return elapsed, err
}
