package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/yoj3289/WeNectProject/internal/logger"
)

// Message 一条待投递的用户通知
type Message struct {
	UserId   int64
	Type     string
	Category string
	Title    string
	Body     string
	Link     string
	Metadata map[string]interface{}
}

// Sink 通知的最终落地方式
type Sink interface {
	Send(ctx context.Context, msg Message) error
}

// Emitter 调用方只负责投递, 不关心结果
type Emitter interface {
	Emit(msg Message)
}

const defaultSendTimeout = 5 * time.Second

// PoolEmitter 基于协程池的异步投递, Emit 立即返回
type PoolEmitter struct {
	pool        *ants.Pool
	sink        Sink
	sendTimeout time.Duration
}

func NewPoolEmitter(size int, sink Sink) (*PoolEmitter, error) {
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(p interface{}) {
			logger.Error("Notification worker panic: %v", p)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification pool: %w", err)
	}
	return &PoolEmitter{pool: pool, sink: sink, sendTimeout: defaultSendTimeout}, nil
}

// Emit 池满或已关闭时直接丢弃并记录日志
func (e *PoolEmitter) Emit(msg Message) {
	err := e.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.sendTimeout)
		defer cancel()
		if err := e.sink.Send(ctx, msg); err != nil {
			logger.Error("Failed to deliver notification: userId=%d, type=%s, err=%v", msg.UserId, msg.Type, err)
			return
		}
		logger.Debug("Notification delivered: userId=%d, type=%s", msg.UserId, msg.Type)
	})
	if err != nil {
		logger.Error("Failed to submit notification: userId=%d, type=%s, err=%v", msg.UserId, msg.Type, err)
	}
}

// Close 等待进行中的投递完成
func (e *PoolEmitter) Close(timeout time.Duration) error {
	return e.pool.ReleaseTimeout(timeout)
}

// NopEmitter 丢弃所有通知
type NopEmitter struct{}

func (NopEmitter) Emit(Message) {}
