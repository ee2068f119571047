package writer

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"deepwriting-api/internal/domain/entity"
	"deepwriting-api/pkg/tracer"
)

// ModelFactory 提供按名称获取 ChatModel 的能力
type ModelFactory interface {
	Get(ctx context.Context, name string) (model.BaseChatModel, error)
}

// GenerateInput 大纲与正文生成的公共输入
type GenerateInput struct {
	Materials    []entity.Material
	Style        entity.StyleSettings
	Requirements entity.Requirements
	// Outline 仅正文生成使用
	Outline string
	// Provider 为空时使用默认 LLM 供应商
	Provider string
}

// Generator 封装三类生成调用，输出统一为 Eino 流
type Generator struct {
	factory ModelFactory
}

// NewGenerator 创建生成器
func NewGenerator(factory ModelFactory) *Generator {
	return &Generator{factory: factory}
}

// StreamOutline 流式生成文章大纲
func (g *Generator) StreamOutline(ctx context.Context, in *GenerateInput) (*schema.StreamReader[*schema.Message], error) {
	return g.stream(ctx, "outline", in.Provider, outlineMessages(in))
}

// StreamContent 流式生成文章正文
func (g *Generator) StreamContent(ctx context.Context, in *GenerateInput) (*schema.StreamReader[*schema.Message], error) {
	return g.stream(ctx, "content", in.Provider, contentMessages(in))
}

// StreamTitles 流式生成候选标题，输出约定为 JSON 数组文本
func (g *Generator) StreamTitles(ctx context.Context, content, provider string) (*schema.StreamReader[*schema.Message], error) {
	return g.stream(ctx, "title", provider, titleMessages(content))
}

// stream 返回 Eino StreamReader，调用方负责 Close()。
// Span 覆盖模型获取与上游建流，不包含后续的逐块读取。
func (g *Generator) stream(ctx context.Context, kind, provider string, msgs []*schema.Message) (*schema.StreamReader[*schema.Message], error) {
	if g == nil || g.factory == nil {
		return nil, fmt.Errorf("generator not configured")
	}

	ctx, span := tracer.StartGeneration(ctx, kind, provider)
	defer span.End()

	chatModel, err := g.factory.Get(ctx, provider)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	reader, err := chatModel.Stream(ctx, msgs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return reader, nil
}
