package roles

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		Name     string
		Tags     []string
		Expected Role
	}{
		{"empty", nil, None},
		{"member only", []string{"member"}, Member},
		{"editor beats member", []string{"editor", "member"}, Editor},
		{"admin beats everything", []string{"admin", "editor", "member"}, Admin},
		{"admin last", []string{"member", "member", "editor", "admin"}, Admin},
		{"duplicates", []string{"editor", "editor"}, Editor},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			role, err := Resolve(test.Tags)
			require.Nil(t, err)
			assert.Equal(t, test.Expected, role)
		})
	}
}

func TestResolveMalformed(t *testing.T) {
	for _, tags := range [][]string{
		{"superuser"},
		{"admin", "Admin"},
		{"member", ""},
		{"editor", " editor"},
	} {
		role, err := Resolve(tags)
		assert.True(t, errors.Is(err, ErrUnknownRole), "tags %v", tags)
		assert.Equal(t, None, role)
	}
}

func TestResolveOrderIndependence(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	pool := []string{TagAdmin, TagEditor, TagMember}

	for i := 0; i < 200; i++ {
		var tags []string
		for n := r.Intn(6); n > 0; n-- {
			tags = append(tags, pool[r.Intn(len(pool))])
		}

		expected, err := Resolve(tags)
		require.Nil(t, err)

		shuffled := append([]string(nil), tags...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		doubled := append(append([]string(nil), tags...), tags...)

		fromShuffled, err := Resolve(shuffled)
		require.Nil(t, err)
		fromDoubled, err := Resolve(doubled)
		require.Nil(t, err)

		assert.Equal(t, expected, fromShuffled, "tags %v", tags)
		assert.Equal(t, expected, fromDoubled, "tags %v", tags)
	}
}

func TestCanPublish(t *testing.T) {
	assert.True(t, Admin.CanPublish())
	assert.True(t, Editor.CanPublish())
	assert.False(t, Member.CanPublish())
	assert.False(t, None.CanPublish())
	assert.Panics(t, func() { Role(17).CanPublish() })
}

func TestCanManageRoles(t *testing.T) {
	assert.True(t, Admin.CanManageRoles())
	assert.False(t, Editor.CanManageRoles())
	assert.False(t, Member.CanManageRoles())
	assert.False(t, None.CanManageRoles())
}

func TestParseAndTag(t *testing.T) {
	for _, role := range Assignable {
		parsed, err := Parse(role.Tag())
		require.Nil(t, err)
		assert.Equal(t, role, parsed)
	}
	assert.Equal(t, "", None.Tag())

	_, err := Parse("")
	assert.ErrorIs(t, err, ErrUnknownRole)
}
