// Package entity 定义领域实体
package entity

import (
	"time"
)

// ProjectStatus 项目状态
type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusGenerating ProjectStatus = "generating"
)

// DefaultProjectTitle 新建项目的缺省标题
const DefaultProjectTitle = "未命名项目"

// Project 写作项目实体。每个项目只属于一个用户，
// 可见性以 owner 为界，不支持共享。
type Project struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Title        string        `json:"title"`
	Status       ProjectStatus `json:"status"`
	MilestoneTab MilestoneTab  `json:"milestone_tab"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewProject 创建新项目
func NewProject(userID, title string) *Project {
	if title == "" {
		title = DefaultProjectTitle
	}
	now := time.Now()
	return &Project{
		UserID:       userID,
		Title:        title,
		Status:       ProjectStatusDraft,
		MilestoneTab: MilestoneMaterials,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
