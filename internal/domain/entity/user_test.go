package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser_NameDefaultsToEmailLocalPart(t *testing.T) {
	u := NewUser("alice@example.com", "")
	assert.Equal(t, "alice", u.Name)

	u = NewUser("bob@example.com", "小王")
	assert.Equal(t, "小王", u.Name)

	// 非法邮箱时退回整个字符串
	u = NewUser("not-an-email", "")
	assert.Equal(t, "not-an-email", u.Name)
}

func TestUser_PasswordRoundTrip(t *testing.T) {
	u := NewUser("alice@example.com", "")
	require.NoError(t, u.SetPassword("s3cret-pass"))

	assert.NotEmpty(t, u.PasswordHash)
	assert.NotContains(t, u.PasswordHash, "s3cret-pass")
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong-pass"))
}

func TestNewProject_Defaults(t *testing.T) {
	p := NewProject("user-1", "")
	assert.Equal(t, DefaultProjectTitle, p.Title)
	assert.Equal(t, ProjectStatusDraft, p.Status)
	assert.Equal(t, MilestoneMaterials, p.MilestoneTab)

	p = NewProject("user-1", "周末随笔")
	assert.Equal(t, "周末随笔", p.Title)
}
