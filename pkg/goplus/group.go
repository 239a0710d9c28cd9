package goplus

import (
	"sync"
	"sync/atomic"
	"time"
)

var defaultGroup = NewWaitGroup()

// DefaultGroup 全局协程组，关闭时用于等待后台任务退出
func DefaultGroup() *WaitGroup {
	return defaultGroup
}

// Go 在全局协程组中启动带 panic 恢复的协程
func Go(fn func()) {
	defaultGroup.Go(fn)
}

// WaitTimeout 等待全局协程组，超时返回 false
func WaitTimeout(timeout time.Duration) bool {
	return defaultGroup.WaitTimeout(timeout)
}

type WaitGroup struct {
	wg      sync.WaitGroup
	running atomic.Int64
}

func NewWaitGroup() *WaitGroup {
	return &WaitGroup{}
}

func (s *WaitGroup) Go(fn func()) {
	s.running.Add(1)
	s.wg.Add(1)

	go func() {
		defer func() {
			s.running.Add(-1)
			s.wg.Done()
		}()
		defer Recover()

		fn()
	}()
}

// Running 当前运行中的协程数
func (s *WaitGroup) Running() int64 {
	return s.running.Load()
}

func (s *WaitGroup) Wait() {
	s.wg.Wait()
}

func (s *WaitGroup) WaitTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
