// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dotandev/parkledger/internal/errors"
)

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "ledger_timestamp": s.client.Host().Clock().Now()})
}

func (s *Server) getConfig(c echo.Context) error {
	cfg, err := s.client.GetConfig(c.Request().Context())
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (s *Server) getPlate(c echo.Context) error {
	rep, err := s.client.Report(c.Request().Context(), c.Param("plate"))
	if err != nil {
		return restError(c, err)
	}
	return c.JSON(http.StatusOK, rep)
}

func restError(c echo.Context, err error) error {
	if code, name, ok := errors.CodeOf(err); ok {
		status := http.StatusConflict
		if code == errors.ErrPlateTooLong.Code {
			status = http.StatusBadRequest
		}
		return c.JSON(status, echo.Map{"error": name, "code": code})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
}
