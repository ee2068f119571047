package dto

import (
	"deepwriting-api/internal/application/workspace"
	"deepwriting-api/internal/application/writer"
	"deepwriting-api/internal/domain/entity"
)

// GenerateOutlineRequest 大纲生成请求。各字段允许任意形状，
// 与工作区保存同样走归一化。
type GenerateOutlineRequest struct {
	Materials    interface{} `json:"materials"`
	Style        interface{} `json:"style"`
	Requirements interface{} `json:"requirements"`
	Provider     string      `json:"provider"`
}

// GenerateContentRequest 正文生成请求
type GenerateContentRequest struct {
	Materials    interface{} `json:"materials"`
	Style        interface{} `json:"style"`
	Requirements interface{} `json:"requirements"`
	Outline      string      `json:"outline"`
	Provider     string      `json:"provider"`
}

// GenerateTitleRequest 标题生成请求
type GenerateTitleRequest struct {
	Content  string `json:"content" binding:"required"`
	Provider string `json:"provider"`
}

// TitleListResponse format=json 时的标题列表响应
type TitleListResponse struct {
	Titles []entity.TitleOption `json:"titles"`
}

// ToGenerateInput 归一化请求字段并转为生成输入
func (r *GenerateOutlineRequest) ToGenerateInput() *writer.GenerateInput {
	snapshot := workspace.Normalize(map[string]interface{}{
		"materials":    r.Materials,
		"style":        r.Style,
		"requirements": r.Requirements,
	})
	return &writer.GenerateInput{
		Materials:    snapshot.Materials,
		Style:        snapshot.Style,
		Requirements: snapshot.Requirements,
		Provider:     r.Provider,
	}
}

// ToGenerateInput 归一化请求字段并转为生成输入
func (r *GenerateContentRequest) ToGenerateInput() *writer.GenerateInput {
	snapshot := workspace.Normalize(map[string]interface{}{
		"materials":    r.Materials,
		"style":        r.Style,
		"requirements": r.Requirements,
	})
	return &writer.GenerateInput{
		Materials:    snapshot.Materials,
		Style:        snapshot.Style,
		Requirements: snapshot.Requirements,
		Outline:      r.Outline,
		Provider:     r.Provider,
	}
}
