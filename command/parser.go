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

package command

import (
	"strings"

	"github.com/kiwid/kiwid/protocol/resp"
)

// Parser 从字节流中解析客户端命令
type Parser struct {
	dec *resp.Decoder
}

// NewParser 创建并返回 *Parser 实例
func NewParser(r resp.ByteReader) *Parser {
	return &Parser{dec: resp.NewDecoder(r)}
}

// Next 阻塞解析下一条完整命令
func (p *Parser) Next() (Command, error) {
	v, err := p.dec.Decode()
	if err != nil {
		return Command{}, err
	}
	return FromValue(v)
}

// FromValue 将 Value 提升为类型化的 Command
//
// 客户端命令必须是非空 Array 且首元素为 BulkString 命令名不区分大小写
func FromValue(v resp.Value) (Command, error) {
	if v.Kind() != resp.KindArray {
		return Command{}, ErrUnsupportedCommand
	}
	elems := v.Elems()
	if len(elems) == 0 {
		return Command{}, ErrUnsupportedCommand
	}
	head := elems[0]
	if head.Kind() != resp.KindBulkString {
		return Command{}, ErrUnsupportedCommand
	}

	args := elems[1:]
	switch strings.ToUpper(string(head.Bytes())) {
	case "PING":
		// 多余的参数宽容忽略
		return Command{Op: OpPing}, nil
	case "COMMAND":
		return newCommand(args)
	case "GET":
		return newGet(args)
	case "SET":
		return newSet(args)
	}
	return Command{}, ErrUnsupportedCommand
}

func newCommand(args []resp.Value) (Command, error) {
	if len(args) != 1 {
		return Command{}, ErrWrongNumberOfArguments
	}
	if args[0].Kind() != resp.KindBulkString {
		return Command{}, ErrWrongArgumentType
	}
	return Command{Op: OpCommand, Arg: string(args[0].Bytes())}, nil
}

func newGet(args []resp.Value) (Command, error) {
	if len(args) != 1 {
		return Command{}, ErrWrongNumberOfArguments
	}
	return Command{Op: OpGet, Key: args[0]}, nil
}

func newSet(args []resp.Value) (Command, error) {
	if len(args) != 2 {
		return Command{}, ErrWrongNumberOfArguments
	}
	return Command{Op: OpSet, Key: args[0], Val: args[1]}, nil
}
