package vars

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tacogips/projgen/internal/template/model"
)

func TestStoreInsert(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Insert("name", model.StringValue("cli")))
	assert.False(t, s.Insert("name", model.StringValue("env")), "lower precedence source must not overwrite")
	assert.False(t, s.Insert("name", model.BoolValue(true)))

	v, ok := s.Get("name")
	require.True(t, ok)
	assert.Equal(t, model.StringValue("cli"), v)
	assert.Equal(t, 1, s.Len())
}

func TestStoreSet(t *testing.T) {
	tests := []struct {
		name    string
		initial *model.Value
		set     model.Value
		want    model.Value
		wantErr bool
	}{
		{
			name: "new key",
			set:  model.StringValue("bar"),
			want: model.StringValue("bar"),
		},
		{
			name:    "same kind overwrite",
			initial: ptr(model.StringValue("foo")),
			set:     model.StringValue("bar"),
			want:    model.StringValue("bar"),
		},
		{
			name:    "bool overwrite",
			initial: ptr(model.BoolValue(false)),
			set:     model.BoolValue(true),
			want:    model.BoolValue(true),
		},
		{
			name:    "kind change rejected",
			initial: ptr(model.StringValue("foo")),
			set:     model.BoolValue(true),
			want:    model.StringValue("foo"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			if tt.initial != nil {
				s.Insert("v", *tt.initial)
			}

			err := s.Set("v", tt.set)
			if tt.wantErr {
				var kindErr *KindMismatchError
				require.True(t, errors.As(err, &kindErr))
				assert.Equal(t, "v", kindErr.Name)
			} else {
				require.NoError(t, err)
			}

			got, ok := s.Get("v")
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStoreOrderAndBindings(t *testing.T) {
	s := NewStore()
	s.Insert("zeta", model.StringValue("z"))
	s.Insert("alpha", model.BoolValue(true))
	require.NoError(t, s.Set("mid", model.StringValue("m")))
	require.NoError(t, s.Set("zeta", model.StringValue("zz")))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, s.Names())
	assert.Equal(t, map[string]interface{}{
		"zeta":  "zz",
		"alpha": true,
		"mid":   "m",
	}, s.Bindings())
}

func TestStoreTypedGetters(t *testing.T) {
	s := NewStore()
	s.Insert("str", model.StringValue("x"))
	s.Insert("flag", model.BoolValue(true))

	got, err := s.GetString("str")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	b, err := s.GetBool("flag")
	require.NoError(t, err)
	assert.True(t, b)

	_, err = s.GetString("flag")
	assert.Error(t, err)
	_, err = s.GetBool("str")
	assert.Error(t, err)
	_, err = s.GetString("missing")
	assert.Error(t, err)

	assert.True(t, s.Has("str"))
	assert.False(t, s.Has("missing"))
}

func TestStoreImplementsVariables(t *testing.T) {
	var v Variables = NewStore()
	assert.Empty(t, v.Bindings())
}

func ptr(v model.Value) *model.Value {
	return &v
}
