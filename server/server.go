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

	"github.com/pkg/errors"

	"github.com/kiwid/kiwid/confengine"
	"github.com/kiwid/kiwid/engine"
	"github.com/kiwid/kiwid/internal/rescue"
)

// Server RESP3 TCP 服务端
//
// 每条接入的链接独占一个 goroutine 链接间互不影响
// 流控依赖 TCP 收发缓冲 服务端不做额外排队
type Server struct {
	config Config
	store  engine.Store

	mut    sync.Mutex
	ln     net.Listener
	conns  map[*conn]struct{}
	closed bool
}

// New 创建并返回 *Server 实例
func New(conf *confengine.Config, store engine.Store) (*Server, error) {
	var config Config
	if err := conf.UnpackChild("server", &config); err != nil {
		return nil, err
	}
	config.Validate()

	return &Server{
		config: config,
		store:  store,
		conns:  make(map[*conn]struct{}),
	}, nil
}

// Address 返回服务监听地址
func (s *Server) Address() string {
	return s.config.Address()
}

// Serve 在给定的 listener 上接受链接 阻塞直至 Close 或 accept 失败
func (s *Server) Serve(ln net.Listener) error {
	s.mut.Lock()
	if s.closed {
		s.mut.Unlock()
		_ = ln.Close()
		return errors.New("server already closed")
	}
	s.ln = ln
	s.mut.Unlock()

	for {
		nc, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		acceptedConns.Inc()
		c := newConn(nc, s.store)
		s.track(c)
		go func() {
			defer rescue.HandleCrash()
			defer s.untrack(c)
			c.serve()
		}()
	}
}

// Close 停止接受新链接并关闭所有活跃链接
func (s *Server) Close() error {
	s.mut.Lock()
	s.closed = true
	ln := s.ln
	conns := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mut.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	for _, c := range conns {
		c.close()
	}
	return err
}

// ActiveConns 返回当前活跃链接数
func (s *Server) ActiveConns() int {
	s.mut.Lock()
	defer s.mut.Unlock()
	return len(s.conns)
}

func (s *Server) track(c *conn) {
	s.mut.Lock()
	s.conns[c] = struct{}{}
	s.mut.Unlock()
	activeConns.Inc()
}

func (s *Server) untrack(c *conn) {
	c.close()
	s.mut.Lock()
	delete(s.conns, c)
	s.mut.Unlock()
	activeConns.Dec()
}
