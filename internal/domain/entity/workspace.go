// Package entity 定义领域实体
package entity

import (
	"time"
	"unicode"
)

// MilestoneTab 写作流程阶段标识
type MilestoneTab string

// 六个写作阶段，顺序固定
const (
	MilestoneMaterials    MilestoneTab = "materials"
	MilestoneStyle        MilestoneTab = "style"
	MilestoneRequirements MilestoneTab = "requirements"
	MilestoneOutline      MilestoneTab = "outline"
	MilestoneContent      MilestoneTab = "content"
	MilestoneTitle        MilestoneTab = "title"
)

// milestoneOrder 阶段全序
var milestoneOrder = []MilestoneTab{
	MilestoneMaterials,
	MilestoneStyle,
	MilestoneRequirements,
	MilestoneOutline,
	MilestoneContent,
	MilestoneTitle,
}

// ParseMilestoneTab 解析阶段标识；未识别返回 false
func ParseMilestoneTab(s string) (MilestoneTab, bool) {
	for _, m := range milestoneOrder {
		if string(m) == s {
			return m, true
		}
	}
	return "", false
}

// Index 返回阶段在流程中的序号；未识别返回 -1
func (m MilestoneTab) Index() int {
	for i, tab := range milestoneOrder {
		if tab == m {
			return i
		}
	}
	return -1
}

// AdvanceMilestone 返回两个阶段中更靠后的一个。
// 里程碑只能前进：target 不晚于 current 时保持 current 不变。
func AdvanceMilestone(current, target MilestoneTab) MilestoneTab {
	if target.Index() > current.Index() {
		return target
	}
	return current
}

// InferMilestone 从内容推断阶段，用于没有显式里程碑的历史数据：
// 有正文视为 content，有大纲视为 outline，否则回到 materials。
func InferMilestone(outline, content string) MilestoneTab {
	if hasVisibleText(content) {
		return MilestoneContent
	}
	if hasVisibleText(outline) {
		return MilestoneOutline
	}
	return MilestoneMaterials
}

func hasVisibleText(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// MaterialType 素材类型
type MaterialType string

const (
	MaterialTypeText MaterialType = "text"
	MaterialTypeURL  MaterialType = "url"
	MaterialTypeFile MaterialType = "file"
)

// Material 写作素材
type Material struct {
	ID         string       `json:"id"`
	Type       MaterialType `json:"type"`
	Name       string       `json:"name"`
	Content    string       `json:"content"`
	Importance int          `json:"importance"` // [1,5]
}

// DefaultImportance 素材缺省重要度
const DefaultImportance = 3

// StyleSettings 风格设置。选择预设与自定义风格文本互斥由
// 客户端保证，服务端不强制。
type StyleSettings struct {
	SelectedPreset    *string `json:"selectedPreset"`
	CustomStyleText   string  `json:"customStyleText"`
	EmotionLevel      int     `json:"emotionLevel"`      // [1,10]
	ProfessionalLevel int     `json:"professionalLevel"` // [1,10]
	ColloquialLevel   int     `json:"colloquialLevel"`   // [1,10]
}

// DefaultStyleLevel 风格滑杆缺省档位
const DefaultStyleLevel = 5

// Requirements 写作要求
type Requirements struct {
	TargetWordCount   int    `json:"targetWordCount"` // [300,5000]
	Audience          string `json:"audience"`
	Purpose           string `json:"purpose"`
	CustomRequirement string `json:"customRequirement"`
}

// 写作要求缺省值
const (
	DefaultTargetWordCount = 1200
	DefaultAudience        = "对该主题感兴趣的普通读者"
	DefaultPurpose         = "帮助读者快速理解核心观点，并提供可执行建议"
)

// DefaultRequirements 返回缺省写作要求
func DefaultRequirements() Requirements {
	return Requirements{
		TargetWordCount:   DefaultTargetWordCount,
		Audience:          DefaultAudience,
		Purpose:           DefaultPurpose,
		CustomRequirement: "",
	}
}

// TitleOption 候选标题
type TitleOption struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"` // 缺省 emotion
	Score    float64 `json:"score"`    // 缺省 8
}

// DefaultTitleCategory 候选标题缺省分类
const DefaultTitleCategory = "emotion"

// DefaultTitleScore 候选标题缺省评分
const DefaultTitleScore = 8

// WorkspaceSnapshot 一个项目工作台的完整快照，
// 既是传输单元也是持久化单元。
type WorkspaceSnapshot struct {
	Materials       []Material    `json:"materials"`
	Style           StyleSettings `json:"style"`
	Requirements    Requirements  `json:"requirements"`
	MilestoneTab    MilestoneTab  `json:"milestoneTab"`
	Outline         string        `json:"outline"`
	Content         string        `json:"content"`
	Titles          []TitleOption `json:"titles"`
	SelectedTitleID *string       `json:"selectedTitleId"`
	// 服务端派生字段，保存时重算，只在加载结果中出现
	WordCount   int        `json:"wordCount,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
}

// DefaultSnapshot 返回全部字段取缺省值的快照
func DefaultSnapshot() *WorkspaceSnapshot {
	return &WorkspaceSnapshot{
		Materials: []Material{},
		Style: StyleSettings{
			SelectedPreset:    nil,
			CustomStyleText:   "",
			EmotionLevel:      DefaultStyleLevel,
			ProfessionalLevel: DefaultStyleLevel,
			ColloquialLevel:   DefaultStyleLevel,
		},
		Requirements:    DefaultRequirements(),
		MilestoneTab:    MilestoneMaterials,
		Outline:         "",
		Content:         "",
		Titles:          []TitleOption{},
		SelectedTitleID: nil,
	}
}

// Clone 返回快照的深拷贝
func (s *WorkspaceSnapshot) Clone() *WorkspaceSnapshot {
	if s == nil {
		return nil
	}
	out := *s
	out.Materials = append([]Material(nil), s.Materials...)
	out.Titles = append([]TitleOption(nil), s.Titles...)
	if s.Style.SelectedPreset != nil {
		preset := *s.Style.SelectedPreset
		out.Style.SelectedPreset = &preset
	}
	if s.SelectedTitleID != nil {
		id := *s.SelectedTitleID
		out.SelectedTitleID = &id
	}
	if s.GeneratedAt != nil {
		at := *s.GeneratedAt
		out.GeneratedAt = &at
	}
	return &out
}

// CountWords 统计正文字数：非空白字符数，与客户端口径一致
func CountWords(body string) int {
	n := 0
	for _, r := range body {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
