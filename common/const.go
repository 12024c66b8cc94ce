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

package common

const (
	// App 应用程序名称
	App = "kiwid"

	// Version 应用程序版本
	Version = "v0.1.0"

	// ReadBufferSize 单条链接读缓冲区的初始容量
	//
	// RESP3 BulkString 理论上限为 512MB 但绝大多数请求远小于此
	// 缓冲区按需扩容 初始容量只决定首次分配的大小
	ReadBufferSize = 1 << 20

	// ReadChunkSize 单次从 socket 读取的最大字节数
	ReadChunkSize = 4096
)
