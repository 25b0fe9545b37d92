package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtLeast(t *testing.T) {
	// Full truth table over the three-role total order.
	cases := []struct {
		required Role
		actual   Role
		want     bool
	}{
		{Viewer, Viewer, true},
		{Viewer, Editor, true},
		{Viewer, Owner, true},
		{Editor, Viewer, false},
		{Editor, Editor, true},
		{Editor, Owner, true},
		{Owner, Viewer, false},
		{Owner, Editor, false},
		{Owner, Owner, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, AtLeast(tc.required, tc.actual),
			"AtLeast(%s, %s)", tc.required, tc.actual)
	}
}

func TestAtLeastUnknownRole(t *testing.T) {
	// An out-of-enumeration value never satisfies a real requirement.
	assert.False(t, AtLeast(Viewer, Role("ADMIN")))
	assert.False(t, AtLeast(Viewer, Role("")))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(Owner))
	assert.True(t, Valid(Editor))
	assert.True(t, Valid(Viewer))
	assert.False(t, Valid(Role("owner")))
	assert.False(t, Valid(Role("MEMBER")))
}
