// Package lock 进程内按 key 串行化的互斥锁
package lock

import (
	"context"
	"sync"
)

// entry 容量为 1 的信号量，便于与 ctx 一起 select
type entry struct {
	sem  chan struct{}
	refs int
}

// KeyedMutex 同一 key 串行，不同 key 互不影响；无人持有的 key 会被回收
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uint64]*entry)}
}

// Lock 阻塞直到获得 key 的锁，返回解锁函数
func (k *KeyedMutex) Lock(key uint64) func() {
	unlock, _ := k.LockContext(context.Background(), key)
	return unlock
}

// LockContext 同 Lock，ctx 结束时放弃等待并返回 ctx.Err()。
// 返回的解锁函数可重复调用。
func (k *KeyedMutex) LockContext(ctx context.Context, key uint64) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedMutex) release(key uint64, e *entry) {
	k.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()
}

// Len 当前被引用的 key 数量
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
