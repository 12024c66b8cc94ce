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

package controller

import (
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kiwid/kiwid/common"
	"github.com/kiwid/kiwid/confengine"
	"github.com/kiwid/kiwid/logger"
)

type adminConfig struct {
	Enabled bool          `config:"enabled"`
	Address string        `config:"address"`
	Pprof   bool          `config:"pprof"`
	Timeout time.Duration `config:"timeout"`
}

// adminServer 运维用 HTTP 服务
//
// 提供 prometheus 指标 运行状态快照 日志级别调整以及可选的 pprof
// 默认不启用 需要显式配置
type adminServer struct {
	config adminConfig
	ctr    *Controller
	router *mux.Router
	server *http.Server
}

// newAdminServer 创建并返回 adminServer 实例
//
// 当 .Enabled 为 false 时会返回空指针 调用方需先判断
func newAdminServer(conf *confengine.Config, ctr *Controller) (*adminServer, error) {
	var config adminConfig
	if err := conf.UnpackChild("admin", &config); err != nil {
		return nil, err
	}
	if !config.Enabled {
		return nil, nil
	}

	router := mux.NewRouter()
	s := &adminServer{
		config: config,
		ctr:    ctr,
		router: router,
		server: &http.Server{
			Handler:      router,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
		},
	}
	s.registerRoutes()
	return s, nil
}

func (s *adminServer) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	logger.Infof("admin server listening on %s", s.config.Address)

	err = s.server.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *adminServer) Close() error {
	return s.server.Close()
}

func (s *adminServer) registerRoutes() {
	s.router.Methods(http.MethodGet).Path("/metrics").HandlerFunc(s.routeMetrics)
	s.router.Methods(http.MethodGet).Path("/-/status").HandlerFunc(s.routeStatus)
	s.router.Methods(http.MethodPost).Path("/-/logger").HandlerFunc(s.routeLogger)

	if s.config.Pprof {
		s.router.Methods(http.MethodGet).Path("/debug/pprof/cmdline").HandlerFunc(pprof.Cmdline)
		s.router.Methods(http.MethodGet).Path("/debug/pprof/profile").HandlerFunc(pprof.Profile)
		s.router.Methods(http.MethodGet).Path("/debug/pprof/symbol").HandlerFunc(pprof.Symbol)
		s.router.Methods(http.MethodGet).Path("/debug/pprof/trace").HandlerFunc(pprof.Trace)
		s.router.Methods(http.MethodGet).Path("/debug/pprof/{other}").HandlerFunc(pprof.Index)
	}
}

func (s *adminServer) routeMetrics(w http.ResponseWriter, r *http.Request) {
	recordMetrics()
	promhttp.Handler().ServeHTTP(w, r)
}

type statusPayload struct {
	Version       string `json:"version"`
	GitHash       string `json:"git_hash"`
	BuildTime     string `json:"build_time"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveConns   int    `json:"active_connections"`
	Keys          int    `json:"keys"`
}

func (s *adminServer) routeStatus(w http.ResponseWriter, r *http.Request) {
	info := common.GetBuildInfo()
	payload := statusPayload{
		Version:       info.Version,
		GitHash:       info.GitHash,
		BuildTime:     info.Time,
		UptimeSeconds: int64(common.Uptime().Seconds()),
		ActiveConns:   s.ctr.svr.ActiveConns(),
		Keys:          s.ctr.store.Len(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (s *adminServer) routeLogger(w http.ResponseWriter, r *http.Request) {
	level := r.FormValue("level")
	logger.SetLoggerLevel(level)
	w.Write([]byte(`{"status": "success"}`))
}
