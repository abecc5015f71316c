package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMap_Value(t *testing.T) {
	v, err := JSONMap(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), v)

	m := JSONMap{}
	m.SetIfNotEmpty("ip", "10.0.0.1")
	m.SetIfNotEmpty("user_agent", "")
	v, err = m.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"ip":"10.0.0.1"}`, string(v.([]byte)))
}

func TestJSONMap_Scan(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    JSONMap
		wantErr error
	}{
		{name: "nil", in: nil, want: JSONMap{}},
		{name: "bytes", in: []byte(`{"ip":"1.1.1.1"}`), want: JSONMap{"ip": "1.1.1.1"}},
		{name: "string", in: `{"user_agent":"curl"}`, want: JSONMap{"user_agent": "curl"}},
		{name: "decoded", in: map[string]any{"a": "b"}, want: JSONMap{"a": "b"}},
		{name: "unsupported", in: 42, wantErr: ErrScanValueNotBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got JSONMap
			err := got.Scan(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.GetString("ip"), got.GetString("ip"))
		})
	}
}
