package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModuleScoping(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: "debug"})

	log.Module("store").Module("gorm").Info("opened", String("driver", "sqlite"))

	out := buf.String()
	assert.Contains(t, out, "module=store.gorm")
	assert.Contains(t, out, "driver=sqlite")
	assert.Contains(t, out, "msg=opened")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Level: "warn"})

	log.Info("hidden")
	log.Warn("shown", Error(errors.New("boom")))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "error=boom")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{Format: "json"}).With(Int("n", 3)).Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"), "expected JSON output, got %q", buf.String())
	assert.Contains(t, buf.String(), `"n":3`)
}

func TestDiscard(t *testing.T) {
	// Must not panic and must ignore every level.
	log := Discard().Module("x")
	log.Error("nothing")
}
