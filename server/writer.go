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
	"io"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/kiwid/kiwid/engine"
)

// responseWriter 将 Response 编码为线上格式并一次性写出
type responseWriter struct {
	w io.Writer
}

func newResponseWriter(w io.Writer) *responseWriter {
	return &responseWriter{w: w}
}

// Write 编码并写入一个完整帧
//
// 序列化缓冲从池中获取 net.Conn 的 Write 保证写完或报错 无需额外 flush
func (rw *responseWriter) Write(rsp engine.Response) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.B = rsp.ToValue().Append(buf.B)
	if _, err := rw.w.Write(buf.B); err != nil {
		return errors.Wrap(err, "write response")
	}
	return nil
}
