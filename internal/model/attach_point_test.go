package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestAttachPoints_DeclarationOrder(t *testing.T) {
	points := AttachPoints()
	require.Len(t, points, int(AttachPointCount))
	for i, p := range points {
		assert.Equal(t, AttachPoint(i), p)
		assert.True(t, p.Valid())
	}
	assert.False(t, AttachPointCount.Valid())
	assert.False(t, AttachPoint(-1).Valid())
}

func TestParseAttachPoint(t *testing.T) {
	tests := []struct {
		in      string
		want    AttachPoint
		wantErr bool
	}{
		{in: "mechanism", want: AttachMechanism},
		{in: "Barrel", want: AttachBarrel},
		{in: " SCOPE ", want: AttachScope},
		{in: "grip", want: AttachGrip},
		{in: "stock", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAttachPoint(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAttachPoint_YAML(t *testing.T) {
	var v struct {
		Slot AttachPoint `yaml:"slot"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("slot: barrel"), &v))
	assert.Equal(t, AttachBarrel, v.Slot)

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, "slot: barrel\n", string(out))
}
