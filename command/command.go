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
	"github.com/pkg/errors"

	"github.com/kiwid/kiwid/protocol/resp"
)

// Op 命令操作符
type Op uint8

const (
	OpNone Op = iota
	OpPing
	OpCommand
	OpGet
	OpSet
)

func (op Op) String() string {
	switch op {
	case OpPing:
		return "ping"
	case OpCommand:
		return "command"
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	}
	return "none"
}

// Command 类型化的客户端命令
//
// 由解码出的 Value 提升而来 被执行器消费 不跨链接共享
type Command struct {
	Op  Op
	Arg string     // COMMAND 的子命令参数
	Key resp.Value // GET / SET 的键
	Val resp.Value // SET 的值
}

// 命令级错误 均可恢复 错误文本以 SimpleError 帧回写客户端
var (
	ErrUnsupportedCommand     = errors.New("Unsupported command")
	ErrWrongNumberOfArguments = errors.New("Wrong number of arguments")
	ErrWrongArgumentType      = errors.New("Wrong argument type")
)

// IsCommandError 判断 err 是否为命令级错误
func IsCommandError(err error) bool {
	return errors.Is(err, ErrUnsupportedCommand) ||
		errors.Is(err, ErrWrongNumberOfArguments) ||
		errors.Is(err, ErrWrongArgumentType)
}
