// Package workspace 实现工作区快照的归一化与会话同步
package workspace

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"deepwriting-api/internal/domain/entity"
)

// Normalize 把任意形状的输入归一化为合法的工作区快照
//
// 纯函数，不产生副作用，对任何输入都不报错：字段非法时逐字段
// 退化到默认值，而不是拒绝整个文档。保证输出满足全部不变式：
// 数值字段在合法区间内、空标题被丢弃、selectedTitleId 要么为
// null 要么指向一个存活的标题。对归一化结果再次归一化得到
// 相同的结果。
func Normalize(raw interface{}) *entity.WorkspaceSnapshot {
	doc := asMap(raw)
	snapshot := entity.DefaultSnapshot()

	snapshot.Materials = normalizeMaterials(doc["materials"])
	snapshot.Style = normalizeStyle(doc["style"])
	snapshot.Requirements = normalizeRequirements(doc["requirements"])
	snapshot.Outline = asString(doc["outline"], "")
	snapshot.Content = asString(doc["content"], "")
	snapshot.Titles = normalizeTitles(doc["titles"])
	snapshot.SelectedTitleID = normalizeSelectedTitle(doc["selectedTitleId"], snapshot.Titles)

	tab, ok := entity.ParseMilestoneTab(asString(doc["milestoneTab"], ""))
	if !ok {
		tab = entity.InferMilestone(snapshot.Outline, snapshot.Content)
	}
	snapshot.MilestoneTab = tab

	snapshot.WordCount = entity.CountWords(snapshot.Content)
	snapshot.GeneratedAt = nil

	return snapshot
}

// normalizeMaterials 逐条归一化素材，缺失 id/name 时按序号补齐
func normalizeMaterials(raw interface{}) []entity.Material {
	items := asSlice(raw)
	materials := make([]entity.Material, 0, len(items))
	for i, item := range items {
		m := asMap(item)
		materials = append(materials, entity.Material{
			ID:         asString(m["id"], fmt.Sprintf("material-%d", i+1)),
			Type:       normalizeMaterialType(m["type"]),
			Name:       asString(m["name"], fmt.Sprintf("素材 %d", i+1)),
			Content:    asString(m["content"], ""),
			Importance: clampInt(m["importance"], 1, 5, entity.DefaultImportance),
		})
	}
	return materials
}

func normalizeMaterialType(raw interface{}) entity.MaterialType {
	t := entity.MaterialType(asString(raw, ""))
	switch t {
	case entity.MaterialTypeText, entity.MaterialTypeURL, entity.MaterialTypeFile:
		return t
	default:
		return entity.MaterialTypeText
	}
}

func normalizeStyle(raw interface{}) entity.StyleSettings {
	m := asMap(raw)
	style := entity.StyleSettings{
		CustomStyleText:   asString(m["customStyleText"], ""),
		EmotionLevel:      clampInt(m["emotionLevel"], 1, 10, entity.DefaultStyleLevel),
		ProfessionalLevel: clampInt(m["professionalLevel"], 1, 10, entity.DefaultStyleLevel),
		ColloquialLevel:   clampInt(m["colloquialLevel"], 1, 10, entity.DefaultStyleLevel),
	}
	if preset := asString(m["selectedPreset"], ""); preset != "" {
		style.SelectedPreset = &preset
	}
	return style
}

func normalizeRequirements(raw interface{}) entity.Requirements {
	m := asMap(raw)
	req := entity.Requirements{
		TargetWordCount:   clampInt(m["targetWordCount"], 300, 5000, entity.DefaultTargetWordCount),
		Audience:          asString(m["audience"], ""),
		Purpose:           asString(m["purpose"], ""),
		CustomRequirement: asString(m["customRequirement"], ""),
	}
	if strings.TrimSpace(req.Audience) == "" {
		req.Audience = entity.DefaultAudience
	}
	if strings.TrimSpace(req.Purpose) == "" {
		req.Purpose = entity.DefaultPurpose
	}
	return req
}

// normalizeTitles 归一化候选标题，标题为空白的条目整条丢弃
func normalizeTitles(raw interface{}) []entity.TitleOption {
	items := asSlice(raw)
	titles := make([]entity.TitleOption, 0, len(items))
	for i, item := range items {
		m := asMap(item)
		title := strings.TrimSpace(asString(m["title"], ""))
		if title == "" {
			continue
		}
		category := asString(m["category"], "")
		if category == "" {
			category = entity.DefaultTitleCategory
		}
		titles = append(titles, entity.TitleOption{
			ID:       asString(m["id"], fmt.Sprintf("title-%d", i+1)),
			Title:    title,
			Category: category,
			Score:    asNumberOr(m["score"], entity.DefaultTitleScore),
		})
	}
	return titles
}

// normalizeSelectedTitle 校验选中标题的引用完整性，悬空引用坍缩为 null
func normalizeSelectedTitle(raw interface{}, titles []entity.TitleOption) *string {
	id := asString(raw, "")
	if id == "" {
		return nil
	}
	for _, t := range titles {
		if t.ID == id {
			return &id
		}
	}
	return nil
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func asSlice(v interface{}) []interface{} {
	if s, ok := v.([]interface{}); ok {
		return s
	}
	return nil
}

func asString(v interface{}, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// asNumber 宽松地把输入解释为数值：数值类型直接用，
// 数值字符串解析后用，其余返回 false
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func asNumberOr(v interface{}, def float64) float64 {
	if f, ok := asNumber(v); ok {
		return f
	}
	return def
}

// clampInt 把输入四舍五入到整数并钳制在 [lo, hi]，非数值退化为默认值
func clampInt(v interface{}, lo, hi, def int) int {
	f, ok := asNumber(v)
	if !ok {
		return def
	}
	// 先在浮点域钳制，超出 int 表示范围的值转换结果未定义
	if f >= float64(hi) {
		return hi
	}
	if f <= float64(lo) {
		return lo
	}
	return int(math.Round(f))
}
