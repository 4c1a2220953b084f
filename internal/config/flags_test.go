package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetAddress_Set(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		want    NetAddress
	}{
		{"localhost", "localhost:8790", false, NetAddress{Host: "localhost", Port: 8790}},
		{"ip address", "127.0.0.1:9000", false, NetAddress{Host: "127.0.0.1", Port: 9000}},
		{"missing port", "localhost", true, NetAddress{}},
		{"non numeric port", "localhost:abc", true, NetAddress{}},
		{"zero port", "localhost:0", true, NetAddress{}},
		{"bogus host", "not-an-ip:8080", true, NetAddress{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a NetAddress
			err := a.Set(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestNetAddress_String(t *testing.T) {
	assert.Empty(t, (&NetAddress{}).String())
	assert.Equal(t, "localhost:8790", (&NetAddress{Host: "localhost", Port: 8790}).String())
}
