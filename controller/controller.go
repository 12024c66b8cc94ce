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

	"github.com/hashicorp/go-multierror"

	"github.com/kiwid/kiwid/common"
	"github.com/kiwid/kiwid/confengine"
	"github.com/kiwid/kiwid/internal/rescue"
	"github.com/kiwid/kiwid/logger"
	"github.com/kiwid/kiwid/server"
	"github.com/kiwid/kiwid/storage"
)

// Controller 负责装配并管理各组件的生命周期
//
// 装配顺序: logger -> storage -> tcp server -> admin server
type Controller struct {
	store *storage.Storage
	svr   *server.Server
	adm   *adminServer
}

func setupLogger(conf *confengine.Config) error {
	var opts logger.Options
	if err := conf.UnpackChild("logger", &opts); err != nil {
		return err
	}

	opts.Validate()
	logger.SetOptions(opts)
	return nil
}

func storageOptions(conf *confengine.Config) (common.Options, error) {
	var m map[string]any
	if err := conf.UnpackChild("storage", &m); err != nil {
		return nil, err
	}
	if m == nil {
		return common.NewOptions(), nil
	}
	return common.Options(m), nil
}

// New 创建并返回 Controller 实例
func New(conf *confengine.Config) (*Controller, error) {
	if err := setupLogger(conf); err != nil {
		return nil, err
	}

	opts, err := storageOptions(conf)
	if err != nil {
		return nil, err
	}
	store, err := storage.New(opts)
	if err != nil {
		return nil, err
	}

	svr, err := server.New(conf, store)
	if err != nil {
		return nil, err
	}

	ctr := &Controller{
		store: store,
		svr:   svr,
	}

	adm, err := newAdminServer(conf, ctr)
	if err != nil {
		return nil, err
	}
	ctr.adm = adm
	return ctr, nil
}

// Start 同步完成端口监听 服务循环在后台推进
func (c *Controller) Start() error {
	ln, err := net.Listen("tcp", c.svr.Address())
	if err != nil {
		return err
	}
	logger.Infof("server listening on %s", c.svr.Address())

	go func() {
		defer rescue.HandleCrash()
		if err := c.svr.Serve(ln); err != nil {
			logger.Errorf("server exited: %v", err)
		}
	}()

	if c.adm != nil {
		go func() {
			defer rescue.HandleCrash()
			if err := c.adm.ListenAndServe(); err != nil {
				logger.Errorf("admin server exited: %v", err)
			}
		}()
	}
	return nil
}

// Reload 应用新的配置文件
//
// 仅日志配置支持热更新 监听地址与存储分片数的变更需要重启进程
func (c *Controller) Reload(conf *confengine.Config) error {
	return setupLogger(conf)
}

// Stop 停止所有组件 关闭过程中的错误聚合后记录
func (c *Controller) Stop() {
	var errs error
	if err := c.svr.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.adm != nil {
		if err := c.adm.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if errs != nil {
		logger.Warnf("controller stopped with errors: %v", errs)
		return
	}
	logger.Infof("controller stopped")
}
