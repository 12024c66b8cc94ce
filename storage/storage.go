// Copyright 2025 The kiwid Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"

	"github.com/kiwid/kiwid/common"
)

const defaultShards = 16

// Storage 进程内字节键值存储
//
// 按 key 的 xxhash 分片 每个分片独立加锁 降低并发链接间的锁竞争
// 仅保证单次 Get/Set 的原子性 不提供跨操作事务
// 数据不落盘 进程退出即丢失
type Storage struct {
	shards []*shard
	mask   uint64
}

type shard struct {
	mut  sync.RWMutex
	data map[string][]byte
}

// New 创建并返回 *Storage 实例
//
// opts 支持 shards 配置项 向上取整至 2 的幂 默认 16
func New(opts common.Options) (*Storage, error) {
	n := defaultShards
	if opts.Has("shards") {
		i, err := opts.GetInt("shards")
		if err != nil {
			return nil, errors.Wrap(err, "parse storage.shards")
		}
		if i > 0 {
			n = i
		}
	}

	size := 1
	for size < n {
		size <<= 1
	}

	shards := make([]*shard, size)
	for i := range shards {
		shards[i] = &shard{data: make(map[string][]byte)}
	}
	return &Storage{
		shards: shards,
		mask:   uint64(size - 1),
	}, nil
}

func (s *Storage) shard(key []byte) *shard {
	return s.shards[xxhash.Sum64(key)&s.mask]
}

// Get 返回 key 对应的值 不存在时返回 false
//
// 返回的切片归存储所有 调用方不得修改
func (s *Storage) Get(key []byte) ([]byte, bool) {
	sd := s.shard(key)
	sd.mut.RLock()
	defer sd.mut.RUnlock()

	b, ok := sd.data[string(key)]
	return b, ok
}

// Set 无条件覆盖写入 key/value 的所有权转移给存储
func (s *Storage) Set(key, value []byte) {
	sd := s.shard(key)
	sd.mut.Lock()
	defer sd.mut.Unlock()

	sd.data[string(key)] = value
}

// Len 返回当前键总数
func (s *Storage) Len() int {
	var total int
	for _, sd := range s.shards {
		sd.mut.RLock()
		total += len(sd.data)
		sd.mut.RUnlock()
	}
	return total
}
