// Package writer 实现大纲、正文和标题的 LLM 生成
package writer

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"deepwriting-api/internal/domain/entity"
)

// presetStyle 内置写作风格预设
type presetStyle struct {
	Name string
	Desc string
}

var presetStyles = map[string]presetStyle{
	"tech_blog":    {Name: "技术博客风", Desc: "清晰直接、代码示例、实操性强"},
	"economist":    {Name: "经济学人风", Desc: "严谨客观、数据驱动、全球视野"},
	"academic":     {Name: "学术论文风", Desc: "引用严谨、逻辑缜密、措辞考究"},
	"storytelling": {Name: "故事叙事风", Desc: "娓娓道来、场景感强、代入感十足"},
	"luxun":        {Name: "鲁迅风", Desc: "犀利讽刺、言简意赅、一针见血"},
	"jkrowling":    {Name: "JK罗琳风", Desc: "想象力丰富、细节生动、引人入胜"},
	"shitiesheng":  {Name: "史铁生风", Desc: "沉静内省、温暖深沉、哲理性强"},
}

const outlineSystemPrompt = `你是一位专业的写作大纲规划师。根据用户提供的素材和风格要求，生成一份结构清晰的 Markdown 格式文章大纲。

要求：
- 用 ## 标记章节标题
- 每个章节下用 - 列出 2-4 个要点
- 大纲应该逻辑清晰、层次分明
- 重要度高的素材应给予更多篇幅
- 直接输出大纲内容，不要解释`

const contentSystemPrompt = `你是一位专业的文章撰写者。根据提供的素材、风格要求和大纲，撰写一篇完整的文章。

要求：
- 严格按照大纲结构展开
- 充分利用素材中的信息和数据
- 保持风格一致
- 文章要有可读性，段落间衔接自然
- 直接输出正文内容，不要包含标题，不要加任何说明或解释`

const titleSystemPrompt = `你是一位标题创作专家。根据文章内容生成 10 个候选标题。

你必须严格按照以下 JSON 格式输出，不要输出任何其他内容：
[
  {"title": "标题文本", "category": "分类", "score": 评分}
]

category 必须是以下之一：numeric（数字型）、emotion（情感型）、suspense（悬念型）、contrast（对比型）、breaking（爆料型）
score 是 1-10 的浮点数，表示标题质量评分

只输出 JSON 数组，不要输出任何解释文字。`

// titleSummaryLimit 标题生成只取正文前若干字符做摘要，避免超出上下文
const titleSummaryLimit = 2000

// buildMaterialsText 把素材拼装成提示词片段
func buildMaterialsText(materials []entity.Material) string {
	blocks := make([]string, 0, len(materials))
	for _, m := range materials {
		blocks = append(blocks, fmt.Sprintf("【%s】(重要度 %d/5)\n%s", m.Name, m.Importance, m.Content))
	}
	return strings.Join(blocks, "\n\n---\n\n")
}

// buildStylePrompt 把风格设置拼装成提示词片段
func buildStylePrompt(style entity.StyleSettings) string {
	var parts []string
	if style.SelectedPreset != nil {
		if preset, ok := presetStyles[*style.SelectedPreset]; ok {
			parts = append(parts, fmt.Sprintf("写作风格：%s — %s", preset.Name, preset.Desc))
		}
	}
	if style.CustomStyleText != "" {
		parts = append(parts, "自定义风格参考：\n"+style.CustomStyleText)
	}
	parts = append(parts,
		fmt.Sprintf("情感浓度：%d/10", style.EmotionLevel),
		fmt.Sprintf("专业深度：%d/10", style.ProfessionalLevel),
		fmt.Sprintf("口语化程度：%d/10", style.ColloquialLevel),
	)
	return strings.Join(parts, "\n")
}

// buildRequirementsPrompt 把写作要求拼装成提示词片段
func buildRequirementsPrompt(req entity.Requirements) string {
	parts := []string{
		fmt.Sprintf("目标字数：约 %d 字", req.TargetWordCount),
		fmt.Sprintf("目标读者：%s", req.Audience),
		fmt.Sprintf("写作目标：%s", req.Purpose),
	}
	if strings.TrimSpace(req.CustomRequirement) != "" {
		parts = append(parts, "补充要求：\n"+req.CustomRequirement)
	}
	return strings.Join(parts, "\n")
}

func outlineMessages(in *GenerateInput) []*schema.Message {
	materialsText := buildMaterialsText(in.Materials)
	if materialsText == "" {
		materialsText = "（用户未提供素材，请生成一个通用的文章框架）"
	}

	prompt := fmt.Sprintf(`## 素材内容

%s

## 风格要求

%s

## 写作要求

%s

请生成文章大纲：`, materialsText, buildStylePrompt(in.Style), buildRequirementsPrompt(in.Requirements))

	return []*schema.Message{
		schema.SystemMessage(outlineSystemPrompt),
		schema.UserMessage(prompt),
	}
}

func contentMessages(in *GenerateInput) []*schema.Message {
	materialsText := buildMaterialsText(in.Materials)
	if materialsText == "" {
		materialsText = "（无素材）"
	}
	outline := in.Outline
	if strings.TrimSpace(outline) == "" {
		outline = "（无大纲，请自由发挥）"
	}

	prompt := fmt.Sprintf(`## 素材内容

%s

## 风格要求

%s

## 写作要求

%s

## 文章大纲

%s

请撰写完整正文：`, materialsText, buildStylePrompt(in.Style), buildRequirementsPrompt(in.Requirements), outline)

	return []*schema.Message{
		schema.SystemMessage(contentSystemPrompt),
		schema.UserMessage(prompt),
	}
}

func titleMessages(content string) []*schema.Message {
	summary := []rune(content)
	if len(summary) > titleSummaryLimit {
		summary = summary[:titleSummaryLimit]
	}

	prompt := fmt.Sprintf(`文章内容摘要：

%s

请生成 10 个候选标题（JSON 格式）：`, string(summary))

	return []*schema.Message{
		schema.SystemMessage(titleSystemPrompt),
		schema.UserMessage(prompt),
	}
}
