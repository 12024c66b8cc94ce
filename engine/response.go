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
	"github.com/kiwid/kiwid/protocol/resp"
)

type responseKind uint8

const (
	responseOk responseKind = iota
	responsePong
	responseValue
	responseError
	responseNull
)

// Response 命令执行结果
type Response struct {
	kind    responseKind
	value   resp.Value
	message string
}

func OkResponse() Response {
	return Response{kind: responseOk}
}

func PongResponse() Response {
	return Response{kind: responsePong}
}

func ValueResponse(v resp.Value) Response {
	return Response{kind: responseValue, value: v}
}

func ErrorResponse(message string) Response {
	return Response{kind: responseError, message: message}
}

func NullResponse() Response {
	return Response{kind: responseNull}
}

// ToValue 将 Response 投影为待编码的 Value
func (r Response) ToValue() resp.Value {
	switch r.kind {
	case responseOk:
		return resp.NewSimpleString("OK")
	case responsePong:
		return resp.NewSimpleString("PONG")
	case responseValue:
		return r.value
	case responseError:
		return resp.NewSimpleError(r.message)
	}
	return resp.NewNull()
}
