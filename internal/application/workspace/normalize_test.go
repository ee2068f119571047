package workspace

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deepwriting-api/internal/domain/entity"
)

func TestNormalize_Totality(t *testing.T) {
	// 任何形状的输入都不 panic，且得到默认快照
	inputs := []interface{}{
		nil,
		"a string",
		42,
		3.14,
		true,
		[]interface{}{1, 2, 3},
		map[string]interface{}{"materials": "not an array", "style": []interface{}{}},
		map[string]interface{}{"titles": map[string]interface{}{"nested": "wrong"}},
	}

	for _, input := range inputs {
		snapshot := Normalize(input)
		require.NotNil(t, snapshot)
		assert.Empty(t, snapshot.Materials)
		assert.Empty(t, snapshot.Titles)
		assert.Equal(t, entity.MilestoneMaterials, snapshot.MilestoneTab)
		assert.Equal(t, entity.DefaultTargetWordCount, snapshot.Requirements.TargetWordCount)
		assert.Equal(t, entity.DefaultAudience, snapshot.Requirements.Audience)
		assert.Equal(t, entity.DefaultPurpose, snapshot.Requirements.Purpose)
		assert.Nil(t, snapshot.SelectedTitleID)
	}
}

func TestNormalize_Idempotence(t *testing.T) {
	inputs := []interface{}{
		nil,
		map[string]interface{}{
			"materials": []interface{}{
				map[string]interface{}{"name": "A", "content": "x", "importance": float64(9)},
				map[string]interface{}{"type": "url", "content": "http://example.com"},
			},
			"style":           map[string]interface{}{"emotionLevel": float64(-3), "selectedPreset": "轻松幽默"},
			"requirements":    map[string]interface{}{"targetWordCount": "abc"},
			"outline":         "## 第一节",
			"content":         "正文 内容",
			"titles":          []interface{}{map[string]interface{}{"id": "t1", "title": "Foo"}},
			"selectedTitleId": "t1",
			"milestoneTab":    "outline",
		},
	}

	for _, input := range inputs {
		once := Normalize(input)

		// 通过 JSON 往返模拟客户端回传归一化结果
		data, err := json.Marshal(once)
		require.NoError(t, err)
		var roundTripped interface{}
		require.NoError(t, json.Unmarshal(data, &roundTripped))

		twice := Normalize(roundTripped)
		assert.Equal(t, once, twice)
	}
}

func TestNormalize_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		check func(t *testing.T, s *entity.WorkspaceSnapshot)
	}{
		{
			name: "importance above range",
			input: map[string]interface{}{
				"materials": []interface{}{map[string]interface{}{"name": "A", "importance": float64(999)}},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 5, s.Materials[0].Importance)
			},
		},
		{
			name: "importance below range",
			input: map[string]interface{}{
				"materials": []interface{}{map[string]interface{}{"name": "A", "importance": float64(-4)}},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 1, s.Materials[0].Importance)
			},
		},
		{
			name: "importance far beyond int range clamps high",
			input: map[string]interface{}{
				"materials": []interface{}{map[string]interface{}{"name": "A", "importance": 1e300}},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 5, s.Materials[0].Importance)
			},
		},
		{
			name: "importance far below int range clamps low",
			input: map[string]interface{}{
				"materials": []interface{}{map[string]interface{}{"name": "A", "importance": -1e300}},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 1, s.Materials[0].Importance)
			},
		},
		{
			name: "importance fractional rounds",
			input: map[string]interface{}{
				"materials": []interface{}{map[string]interface{}{"name": "A", "importance": 3.6}},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 4, s.Materials[0].Importance)
			},
		},
		{
			name: "non-numeric target word count",
			input: map[string]interface{}{
				"requirements": map[string]interface{}{"targetWordCount": "abc"},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 1200, s.Requirements.TargetWordCount)
			},
		},
		{
			name: "numeric string is accepted",
			input: map[string]interface{}{
				"requirements": map[string]interface{}{"targetWordCount": "800"},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 800, s.Requirements.TargetWordCount)
			},
		},
		{
			name: "style levels clamped to [1,10]",
			input: map[string]interface{}{
				"style": map[string]interface{}{
					"emotionLevel":      float64(99),
					"professionalLevel": float64(0),
					"colloquialLevel":   "not a number",
				},
			},
			check: func(t *testing.T, s *entity.WorkspaceSnapshot) {
				assert.Equal(t, 10, s.Style.EmotionLevel)
				assert.Equal(t, 1, s.Style.ProfessionalLevel)
				assert.Equal(t, 5, s.Style.ColloquialLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Normalize(tt.input))
		})
	}
}

func TestNormalize_DropsEmptyTitles(t *testing.T) {
	input := map[string]interface{}{
		"titles": []interface{}{
			map[string]interface{}{"id": "t1", "title": "Foo"},
			map[string]interface{}{"id": "t2", "title": ""},
			map[string]interface{}{"id": "t3", "title": "   "},
		},
		"selectedTitleId": "t2",
	}

	snapshot := Normalize(input)

	require.Len(t, snapshot.Titles, 1)
	assert.Equal(t, "t1", snapshot.Titles[0].ID)
	assert.Equal(t, "Foo", snapshot.Titles[0].Title)
	// 被选中的标题已被丢弃，引用坍缩为 null
	assert.Nil(t, snapshot.SelectedTitleID)
}

func TestNormalize_SelectedTitleReferentialIntegrity(t *testing.T) {
	titles := []interface{}{
		map[string]interface{}{"id": "t1", "title": "Foo"},
		map[string]interface{}{"id": "t2", "title": "Bar"},
	}

	valid := Normalize(map[string]interface{}{"titles": titles, "selectedTitleId": "t2"})
	require.NotNil(t, valid.SelectedTitleID)
	assert.Equal(t, "t2", *valid.SelectedTitleID)

	dangling := Normalize(map[string]interface{}{"titles": titles, "selectedTitleId": "t9"})
	assert.Nil(t, dangling.SelectedTitleID)
}

func TestNormalize_TitleDefaults(t *testing.T) {
	snapshot := Normalize(map[string]interface{}{
		"titles": []interface{}{map[string]interface{}{"title": "Foo"}},
	})

	require.Len(t, snapshot.Titles, 1)
	assert.Equal(t, "title-1", snapshot.Titles[0].ID)
	assert.Equal(t, entity.DefaultTitleCategory, snapshot.Titles[0].Category)
	assert.Equal(t, float64(entity.DefaultTitleScore), snapshot.Titles[0].Score)
}

func TestNormalize_TitleScoreKeepsFraction(t *testing.T) {
	snapshot := Normalize(map[string]interface{}{
		"titles": []interface{}{map[string]interface{}{"title": "Foo", "score": 8.7}},
	})

	require.Len(t, snapshot.Titles, 1)
	assert.Equal(t, 8.7, snapshot.Titles[0].Score)
}

func TestNormalize_MaterialDefaults(t *testing.T) {
	snapshot := Normalize(map[string]interface{}{
		"materials": []interface{}{
			map[string]interface{}{"content": "x"},
			map[string]interface{}{"type": "video", "name": "B"},
		},
	})

	require.Len(t, snapshot.Materials, 2)
	assert.Equal(t, "material-1", snapshot.Materials[0].ID)
	assert.Equal(t, "素材 1", snapshot.Materials[0].Name)
	assert.Equal(t, entity.MaterialTypeText, snapshot.Materials[0].Type)
	assert.Equal(t, entity.DefaultImportance, snapshot.Materials[0].Importance)
	// 未识别的素材类型退化为 text
	assert.Equal(t, entity.MaterialTypeText, snapshot.Materials[1].Type)
	assert.Equal(t, "B", snapshot.Materials[1].Name)
}

func TestNormalize_MilestoneInference(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		want  entity.MilestoneTab
	}{
		{
			name:  "explicit valid tab wins",
			input: map[string]interface{}{"milestoneTab": "title", "content": "正文"},
			want:  entity.MilestoneTitle,
		},
		{
			name:  "invalid tab with content infers content",
			input: map[string]interface{}{"milestoneTab": "bogus", "content": "正文"},
			want:  entity.MilestoneContent,
		},
		{
			name:  "absent tab with outline infers outline",
			input: map[string]interface{}{"outline": "## 第一节"},
			want:  entity.MilestoneOutline,
		},
		{
			name:  "whitespace-only content falls through to materials",
			input: map[string]interface{}{"content": "   \n\t"},
			want:  entity.MilestoneMaterials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input).MilestoneTab)
		})
	}
}

func TestNormalize_DerivedWordCount(t *testing.T) {
	snapshot := Normalize(map[string]interface{}{"content": "a b\n c\t天地"})
	assert.Equal(t, 5, snapshot.WordCount)
	assert.Nil(t, snapshot.GeneratedAt)
}
