package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "events", want: `"events"`},
		{name: "embedded quote doubled", in: `od"d`, want: `"od""d"`},
		{name: "only quotes", in: `""`, want: `""""""`},
		{name: "empty", in: "", want: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteIdent(tt.in))
		})
	}
}

func TestKindFromCode(t *testing.T) {
	assert.Equal(t, KindView, KindFromCode("v"))
	assert.Equal(t, KindTable, KindFromCode("t"))
	// Anything unrecognised is treated as a base table.
	assert.Equal(t, KindTable, KindFromCode("x"))
}

func TestConfigAddr(t *testing.T) {
	cfg := &Config{Host: "ch.internal", Port: 9440}
	assert.Equal(t, "ch.internal:9440", cfg.Addr(9000))

	cfg.Port = 0
	assert.Equal(t, "ch.internal:9000", cfg.Addr(9000))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProtocolNative, cfg.Protocol)
	assert.Equal(t, "default", cfg.Database)
	assert.NotZero(t, cfg.MaxConns)
	assert.NotZero(t, cfg.ConnectTimeout)
}
