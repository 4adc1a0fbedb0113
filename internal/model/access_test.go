package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAccessLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    AccessLevel
		wantErr bool
	}{
		{in: "none", want: AccessNone},
		{in: "view", want: AccessView},
		{in: "EDIT", want: AccessEdit},
		{in: " view ", want: AccessView},
		{in: "admin", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAccessLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAccessLevel_AtLeast(t *testing.T) {
	assert.True(t, AccessEdit.AtLeast(AccessView))
	assert.True(t, AccessView.AtLeast(AccessView))
	assert.False(t, AccessView.AtLeast(AccessEdit))
	assert.False(t, AccessNone.AtLeast(AccessView))
	assert.True(t, AccessNone.AtLeast(AccessNone))
}

func TestPermissions_MarshalJSON_Nil(t *testing.T) {
	var p Permissions
	b, err := p.MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, "{}", string(b))
}
