package host

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHost(t *testing.T) {
	id := uuid.New()
	h := New("127.0.0.1", "dc1", "rack1", id, "4.0.0")

	require.Equal(t, "127.0.0.1", h.IP())
	assert.Equal(t, "dc1", h.Datacenter())
	assert.Equal(t, "rack1", h.Rack())
	assert.Equal(t, id, h.ID())
	assert.Equal(t, "4.0.0", h.ReleaseVersion())
}

func TestHost_Equal(t *testing.T) {
	id := uuid.New()
	h := New("10.0.0.1", "dc1", "rack1", id, "4.0.0")

	tests := []struct {
		name  string
		attrs Attributes
		want  bool
	}{
		{
			name:  "identical attributes",
			attrs: Attributes{Datacenter: "dc1", Rack: "rack1", ID: id, ReleaseVersion: "4.0.0"},
			want:  true,
		},
		{
			name:  "different rack",
			attrs: Attributes{Datacenter: "dc1", Rack: "rack2", ID: id, ReleaseVersion: "4.0.0"},
			want:  false,
		},
		{
			name:  "different id",
			attrs: Attributes{Datacenter: "dc1", Rack: "rack1", ID: uuid.New(), ReleaseVersion: "4.0.0"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.Equal(tt.attrs))
		})
	}
}

func TestWithAttributes(t *testing.T) {
	id := uuid.New()
	h := WithAttributes("192.168.1.1", Attributes{
		Datacenter:     "dc2",
		Rack:           "rack3",
		ID:             id,
		ReleaseVersion: "3.11.0",
	})

	assert.Equal(t, "192.168.1.1", h.IP())
	assert.Equal(t, "dc2", h.Datacenter())
	assert.True(t, h.Equal(Attributes{Datacenter: "dc2", Rack: "rack3", ID: id, ReleaseVersion: "3.11.0"}))
}
