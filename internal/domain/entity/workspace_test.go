package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceMilestone_OnlyMovesForward(t *testing.T) {
	tests := []struct {
		name    string
		current MilestoneTab
		target  MilestoneTab
		want    MilestoneTab
	}{
		{"前进", MilestoneMaterials, MilestoneOutline, MilestoneOutline},
		{"后退保持不变", MilestoneContent, MilestoneMaterials, MilestoneContent},
		{"相同保持不变", MilestoneStyle, MilestoneStyle, MilestoneStyle},
		{"跳到末尾", MilestoneMaterials, MilestoneTitle, MilestoneTitle},
		{"未识别目标不前进", MilestoneOutline, MilestoneTab("bogus"), MilestoneOutline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AdvanceMilestone(tt.current, tt.target))
		})
	}
}

func TestParseMilestoneTab(t *testing.T) {
	for _, valid := range []string{"materials", "style", "requirements", "outline", "content", "title"} {
		tab, ok := ParseMilestoneTab(valid)
		require.True(t, ok, valid)
		assert.Equal(t, valid, string(tab))
	}

	_, ok := ParseMilestoneTab("drafting")
	assert.False(t, ok)
	_, ok = ParseMilestoneTab("")
	assert.False(t, ok)
}

func TestInferMilestone(t *testing.T) {
	assert.Equal(t, MilestoneContent, InferMilestone("大纲", "正文"))
	assert.Equal(t, MilestoneContent, InferMilestone("", "正文"))
	assert.Equal(t, MilestoneOutline, InferMilestone("大纲", ""))
	assert.Equal(t, MilestoneOutline, InferMilestone("大纲", "   \n\t"))
	assert.Equal(t, MilestoneMaterials, InferMilestone("", ""))
	assert.Equal(t, MilestoneMaterials, InferMilestone("  ", "  "))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("  \n\t "))
	assert.Equal(t, 5, CountWords("hello"))
	assert.Equal(t, 4, CountWords("你好 世界"))
	assert.Equal(t, 11, CountWords("hello 世界\nfoo错"))
}

func TestDefaultSnapshot(t *testing.T) {
	s := DefaultSnapshot()

	assert.Empty(t, s.Materials)
	assert.NotNil(t, s.Materials)
	assert.Nil(t, s.Style.SelectedPreset)
	assert.Equal(t, DefaultStyleLevel, s.Style.EmotionLevel)
	assert.Equal(t, DefaultTargetWordCount, s.Requirements.TargetWordCount)
	assert.Equal(t, DefaultAudience, s.Requirements.Audience)
	assert.Equal(t, MilestoneMaterials, s.MilestoneTab)
	assert.Nil(t, s.SelectedTitleID)
	assert.Zero(t, s.WordCount)
	assert.Nil(t, s.GeneratedAt)
}

func TestWorkspaceSnapshot_Clone(t *testing.T) {
	preset := "luxun"
	selected := "title-1"
	src := DefaultSnapshot()
	src.Materials = []Material{{ID: "material-1", Type: MaterialTypeText, Name: "a", Importance: 4}}
	src.Titles = []TitleOption{{ID: "title-1", Title: "标题", Category: "suspense", Score: 9}}
	src.Style.SelectedPreset = &preset
	src.SelectedTitleID = &selected

	dst := src.Clone()
	require.NotSame(t, src, dst)

	// 修改拷贝不影响原件
	dst.Materials[0].Name = "b"
	*dst.Style.SelectedPreset = "academic"
	*dst.SelectedTitleID = "title-2"

	assert.Equal(t, "a", src.Materials[0].Name)
	assert.Equal(t, "luxun", *src.Style.SelectedPreset)
	assert.Equal(t, "title-1", *src.SelectedTitleID)
}

func TestWorkspaceSnapshot_CloneNil(t *testing.T) {
	var s *WorkspaceSnapshot
	assert.Nil(t, s.Clone())
}
