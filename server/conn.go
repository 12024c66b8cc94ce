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

package server

import (
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kiwid/kiwid/command"
	"github.com/kiwid/kiwid/engine"
	"github.com/kiwid/kiwid/logger"
	"github.com/kiwid/kiwid/protocol/resp"
)

// conn 单条客户端链接
//
// 读缓冲 解析器 执行器 写出器均为链接独占 存储是唯一的共享实体
type conn struct {
	id     string
	nc     net.Conn
	parser *command.Parser
	proc   *engine.Processor
	writer *responseWriter

	closeOnce sync.Once
}

func newConn(nc net.Conn, store engine.Store) *conn {
	return &conn{
		id:     uuid.New().String(),
		nc:     nc,
		parser: command.NewParser(resp.NewReader(nc)),
		proc:   engine.NewProcessor(store),
		writer: newResponseWriter(nc),
	}
}

// serve 驱动链接的请求-响应循环
//
// 循环严格串行 一条命令完整处理并写出响应后才读取下一条
// 客户端提前发来的字节留在读缓冲中 不会丢失 (pipelining)
// 可恢复错误回写 SimpleError 帧后继续 终结性错误结束循环并关闭链接
func (c *conn) serve() {
	logger.Infof("conn %s: accepted from %s", c.id, c.nc.RemoteAddr())
	defer c.close()

	for {
		err := c.runOnce()
		if err == nil {
			continue
		}
		if !c.report(err) {
			c.logTerminal(err)
			return
		}
	}
}

// runOnce 处理一条完整的命令 读取 -> 执行 -> 写出
func (c *conn) runOnce() error {
	cmd, err := c.parser.Next()
	if err != nil {
		return err
	}
	handledCommands.WithLabelValues(cmd.Op.String()).Inc()

	rsp, err := c.proc.Process(cmd)
	if err != nil {
		return err
	}
	return c.writer.Write(rsp)
}

// report 尝试将 err 以 SimpleError 帧回写给客户端
//
// 返回 true 表示链接可以继续服务 回写本身失败同样视为终结
func (c *conn) report(err error) bool {
	msg, ok := recoverableMessage(err)
	if !ok {
		return false
	}

	protocolErrors.Inc()
	if werr := c.writer.Write(engine.ErrorResponse(msg)); werr != nil {
		logger.Warnf("conn %s: failed to report error: %v", c.id, werr)
		return false
	}
	return true
}

// recoverableMessage 错误路由策略
//
// - 可恢复的 ParseError 以及命令级错误: 返回待回写的错误文本
// - 对端关闭 / 链接级 IO 错误 / 其他未知错误: 终结链接 不写任何帧
func recoverableMessage(err error) (string, bool) {
	var pe *resp.ParseError
	if errors.As(err, &pe) {
		if !pe.Recoverable() {
			return "", false
		}
		return pe.Error(), true
	}
	if command.IsCommandError(err) {
		return err.Error(), true
	}
	return "", false
}

func (c *conn) logTerminal(err error) {
	if errors.Is(err, resp.ErrClosed) {
		closedConns.WithLabelValues("client_closed").Inc()
		logger.Infof("conn %s: client closed connection", c.id)
		return
	}
	closedConns.WithLabelValues("error").Inc()
	logger.Errorf("conn %s: fatal error: %v, closing connection", c.id, err)
}

// close 幂等关闭 保证链接至多经历一次终结迁移
func (c *conn) close() {
	c.closeOnce.Do(func() {
		_ = c.nc.Close()
	})
}
