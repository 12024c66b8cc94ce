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

package engine

import (
	"github.com/kiwid/kiwid/command"
	"github.com/kiwid/kiwid/protocol/resp"
)

// Store 执行器依赖的键值存储能力
//
// Get/Set 可被任意链接并发调用 实现方保证单次操作的原子性
type Store interface {
	Get(key []byte) ([]byte, bool)
	Set(key, value []byte)
}

// Processor 将命令映射为响应
//
// 键和值均以 RESP3 线上格式存取 GET 时再解码复原
// 这使得存储层对具体的数据类型保持透明 任意 Value 均可无损存放
// 同时 SET/GET 配对天然构成一次编解码往返
type Processor struct {
	store Store
}

// NewProcessor 创建并返回 *Processor 实例
func NewProcessor(store Store) *Processor {
	return &Processor{store: store}
}

// Process 执行一条命令
//
// 存量数据解码失败时向上传递 ParseError 由链接层决定如何回写
func (p *Processor) Process(cmd command.Command) (Response, error) {
	switch cmd.Op {
	case command.OpPing:
		return PongResponse(), nil

	case command.OpCommand:
		return OkResponse(), nil

	case command.OpSet:
		p.store.Set(cmd.Key.Encode(), cmd.Val.Encode())
		return OkResponse(), nil

	case command.OpGet:
		b, ok := p.store.Get(cmd.Key.Encode())
		if !ok {
			return NullResponse(), nil
		}
		v, err := resp.DecodeBytes(b)
		if err != nil {
			return Response{}, err
		}
		return ValueResponse(v), nil
	}

	// OpNone 保留 解析器不会产出
	return OkResponse(), nil
}
