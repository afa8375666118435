package dbexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBarProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewBarProgress(&buf, 2)
	p.Start(4)
	for i := int64(1); i <= 4; i++ {
		p.Update(i)
	}
	p.Finish()
	out := buf.String()
	assert.Contains(t, out, "Progress: [")
	assert.Contains(t, out, "100.0% (4/4)")
	assert.Contains(t, out, "50.0% (2/4)")
}

func TestBarProgress_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewBarProgress(&buf, 0)
	p.Start(0)
	p.Update(3)
	p.Finish()
	assert.Contains(t, buf.String(), "Downloaded 3 rows...")
}
