package writer

import (
	"encoding/json"
	"fmt"
	"strings"

	"deepwriting-api/internal/domain/entity"
	apperrors "deepwriting-api/pkg/errors"
)

// titleCategories 标题分类的识别集合
var titleCategories = map[string]bool{
	"numeric":  true,
	"emotion":  true,
	"suspense": true,
	"contrast": true,
	"breaking": true,
}

// rawTitleOption 模型输出里的单个候选标题
type rawTitleOption struct {
	Title    string      `json:"title"`
	Category string      `json:"category"`
	Score    json.Number `json:"score"`
}

// ExtractJSONArray 从模型输出中截取第一个完整 JSON 数组。
// 容错逻辑：模型可能在数组前后夹杂多余文本或代码块围栏。
func ExtractJSONArray(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return ""
	}
	raw = raw[start : end+1]

	// 确保至少能被 Decoder 消费到一个数组起始
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return ""
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return ""
	}
	return raw
}

// ParseTitleOptions 把模型流式输出汇总后的文本解析为候选标题列表。
// 解析不出任何有效标题时返回 ErrTitleParseFailed，调用方据此与
// 网络故障区分。
func ParseTitleOptions(output string) ([]entity.TitleOption, error) {
	raw := ExtractJSONArray(output)
	if raw == "" {
		return nil, apperrors.ErrTitleParseFailed
	}

	var items []rawTitleOption
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, apperrors.ErrTitleParseFailed
	}

	titles := make([]entity.TitleOption, 0, len(items))
	for i, item := range items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}

		category := strings.TrimSpace(item.Category)
		if !titleCategories[category] {
			category = entity.DefaultTitleCategory
		}

		score := float64(entity.DefaultTitleScore)
		if f, err := item.Score.Float64(); err == nil && f > 0 {
			score = f
		}

		titles = append(titles, entity.TitleOption{
			ID:       fmt.Sprintf("title-%d", i+1),
			Title:    title,
			Category: category,
			Score:    score,
		})
	}

	if len(titles) == 0 {
		return nil, apperrors.ErrTitleParseFailed
	}
	return titles, nil
}
