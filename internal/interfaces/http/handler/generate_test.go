package handler

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamRecorder 补上 CloseNotify，gin 的 Stream 依赖它判断客户端断开
type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func newStreamContext(t *testing.T) (*gin.Context, *streamRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool)}
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/v1/ai/outline", nil)
	return c, w
}

func TestStreamText_EmitsChunksThenDone(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	sw.Send(&schema.Message{Content: "第一段"}, nil)
	sw.Send(&schema.Message{Content: "第二段"}, nil)
	sw.Close()

	c, w := newStreamContext(t)
	(&GenerateHandler{}).streamText(c, "outline", sr)

	body := w.Body.String()
	first := strings.Index(body, "第一段")
	second := strings.Index(body, "第二段")
	done := strings.Index(body, "event:done")
	require.GreaterOrEqual(t, first, 0, "第一块内容缺失: %s", body)
	assert.Greater(t, second, first)
	assert.Greater(t, done, second, "done 事件应出现在所有内容块之后")
	assert.NotContains(t, body, "event:error")
}

// 上游出错时，已缓冲的尾块仍要发给客户端，error 事件收尾
func TestStreamText_FlushesBufferedTailBeforeError(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	sw.Send(&schema.Message{Content: "开头内容"}, nil)
	sw.Send(nil, errors.New("上游连接中断"))
	sw.Close()

	c, w := newStreamContext(t)
	(&GenerateHandler{}).streamText(c, "content", sr)

	body := w.Body.String()
	chunk := strings.Index(body, "开头内容")
	errIdx := strings.Index(body, "event:error")
	require.GreaterOrEqual(t, chunk, 0, "尾块被丢弃: %s", body)
	assert.Greater(t, errIdx, chunk)
	assert.NotContains(t, body, "event:done")
}
