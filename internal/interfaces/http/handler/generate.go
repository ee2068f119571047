package handler

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"

	"deepwriting-api/internal/application/writer"
	"deepwriting-api/internal/interfaces/http/dto"
	"deepwriting-api/pkg/logger"
	"deepwriting-api/pkg/metrics"
)

// GenerateHandler AI 生成处理器，三个端点均为流式代理
type GenerateHandler struct {
	generator *writer.Generator
}

// NewGenerateHandler 创建生成处理器
func NewGenerateHandler(generator *writer.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// Outline 流式生成大纲
// @Summary 按素材、风格与写作要求流式生成文章大纲
// @Tags AI
// @Accept json
// @Produce text/event-stream
// @Param body body dto.GenerateOutlineRequest true "生成请求"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/ai/outline [post]
func (h *GenerateHandler) Outline(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateOutlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	in := req.ToGenerateInput()
	reader, err := h.generator.StreamOutline(ctx, in)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("outline", "error").Inc()
		logger.Error(ctx, "大纲生成启动失败", err, "provider", in.Provider)
		dto.FromError(c, err)
		return
	}

	h.streamText(c, "outline", reader)
}

// Content 流式生成正文
// @Summary 按大纲、素材与风格流式生成文章正文
// @Tags AI
// @Accept json
// @Produce text/event-stream
// @Param body body dto.GenerateContentRequest true "生成请求"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/ai/content [post]
func (h *GenerateHandler) Content(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	in := req.ToGenerateInput()
	reader, err := h.generator.StreamContent(ctx, in)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("content", "error").Inc()
		logger.Error(ctx, "正文生成启动失败", err, "provider", in.Provider)
		dto.FromError(c, err)
		return
	}

	h.streamText(c, "content", reader)
}

// Titles 生成候选标题
// @Summary 按正文生成候选标题，format=json 时聚合解析为标题列表
// @Tags AI
// @Accept json
// @Produce json
// @Param body body dto.GenerateTitleRequest true "生成请求"
// @Param format query string false "json 返回解析后的标题列表，否则流式透传"
// @Success 200 {object} dto.Response[dto.TitleListResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /v1/ai/title [post]
func (h *GenerateHandler) Titles(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	reader, err := h.generator.StreamTitles(ctx, req.Content, req.Provider)
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("title", "error").Inc()
		logger.Error(ctx, "标题生成启动失败", err, "provider", req.Provider)
		dto.FromError(c, err)
		return
	}

	if c.Query("format") != "json" {
		h.streamText(c, "title", reader)
		return
	}

	// format=json：聚合全部输出后解析模型返回的 JSON 数组
	defer reader.Close()
	start := time.Now()

	var raw strings.Builder
	for {
		msg, recvErr := reader.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			metrics.GenerationTotal.WithLabelValues("title", "error").Inc()
			logger.Error(ctx, "标题生成流读取失败", recvErr)
			dto.InternalError(c, "title generation failed")
			return
		}
		raw.WriteString(msg.Content)
	}

	titles, err := writer.ParseTitleOptions(raw.String())
	if err != nil {
		metrics.GenerationTotal.WithLabelValues("title", "error").Inc()
		logger.Warn(ctx, "标题解析失败", "raw_len", raw.Len())
		dto.FromError(c, err)
		return
	}

	metrics.GenerationTotal.WithLabelValues("title", "ok").Inc()
	metrics.GenerationDuration.WithLabelValues("title").Observe(time.Since(start).Seconds())
	dto.Success(c, dto.TitleListResponse{Titles: titles})
}

// streamText 将 Eino 流以 SSE 逐块转发给客户端
func (h *GenerateHandler) streamText(c *gin.Context, kind string, reader *schema.StreamReader[*schema.Message]) {
	ctx := c.Request.Context()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	contentCh := make(chan string, 16)
	errCh := make(chan error, 1)

	go func() {
		defer close(contentCh)
		defer close(errCh)
		defer reader.Close()

		start := time.Now()
		for {
			msg, recvErr := reader.Recv()
			if errors.Is(recvErr, io.EOF) {
				metrics.GenerationTotal.WithLabelValues(kind, "ok").Inc()
				metrics.GenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
				return
			}
			if recvErr != nil {
				metrics.GenerationTotal.WithLabelValues(kind, "error").Inc()
				errCh <- recvErr
				return
			}
			if msg.Content != "" {
				contentCh <- msg.Content
			}
		}
	}()

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-contentCh:
			if !ok {
				// 内容通道耗尽后才看错误通道，缓冲中的尾块不会被丢弃
				if streamErr, open := <-errCh; open && streamErr != nil {
					logger.Error(ctx, "生成流中断", streamErr, "kind", kind)
					c.SSEvent("error", gin.H{"message": streamErr.Error()})
					return false
				}
				c.SSEvent("done", gin.H{"index": index})
				return false
			}
			c.SSEvent("content", gin.H{"chunk": chunk, "index": index})
			index++
			return true

		case <-ctx.Done():
			return false
		}
	})
}
