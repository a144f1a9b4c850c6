package corpus

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports on interval", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()

		tracker.Increment(5)
		assert.Empty(t, buf.String())

		tracker.Increment(5)
		assert.Contains(t, buf.String(), "Progress: 10/100 (10.0%)")
	})

	t.Run("caps at total", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 10, 1)
		tracker.Start()
		tracker.Increment(25)
		assert.Equal(t, 10, tracker.Current())
	})

	t.Run("finish prints total and newline", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()
		tracker.Increment(3)
		tracker.Finish()

		output := buf.String()
		assert.Contains(t, output, "100/100")
		assert.Contains(t, output, "100.0%")
		assert.True(t, strings.HasSuffix(output, "\n"))
	})

	t.Run("ignored before start", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 1)
		tracker.Increment(50)
		tracker.Finish()
		assert.Empty(t, buf.String())
	})

	t.Run("concurrent increments", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 1000, 100)
		tracker.Start()

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					tracker.Increment(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 1000, tracker.Current())
	})
}
