package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestConsole_Throttles(t *testing.T) {
	var buf bytes.Buffer
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := NewConsole(&buf, Options{Width: 20, Interval: time.Second, Now: clock.now})

	c.Start("works", 100)
	assert.Equal(t, 1, strings.Count(buf.String(), "\r"))

	c.Update(10, "")
	c.Update(20, "")
	assert.Equal(t, 1, strings.Count(buf.String(), "\r"), "updates inside the interval are not drawn")

	clock.t = clock.t.Add(2 * time.Second)
	c.Update(30, "row 30")
	assert.Equal(t, 2, strings.Count(buf.String(), "\r"))
	assert.Contains(t, buf.String(), "30/100")
	assert.Contains(t, buf.String(), "row 30")

	c.Finish()
	assert.Contains(t, buf.String(), "100/100")
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))

	before := buf.Len()
	c.Update(5, "")
	c.Finish()
	assert.Equal(t, before, buf.Len(), "no output outside a phase")
}

func TestConsole_UnknownTotal(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, Options{})
	c.Start("tags", 0)
	c.Update(42, "")
	assert.Contains(t, c.Line(), "42")
	assert.NotContains(t, c.Line(), "/")
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.Start("x", 1)
	r.Update(1, "")
	r.Finish()
}

func TestForStderr_Disabled(t *testing.T) {
	assert.Equal(t, Nop{}, ForStderr(false, Options{}))
}
