// common.go
//
// A recipe service with shared and private reference catalogs
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of recipedb.
// recipedb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// recipedb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with recipedb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/middleware"
	"github.com/localnerve/recipedb/internal/policy"
	"github.com/localnerve/recipedb/internal/types"
	"github.com/localnerve/recipedb/internal/utils"
)

// actor returns the policy actor for the request user, nil for guests
func actor(c *fiber.Ctx) *policy.Actor {
	return policy.ActorFor(middleware.CurrentUser(c))
}

// paramID parses the :id route parameter. Ids that cannot exist are reported as not found.
func paramID(c *fiber.Ctx, kind string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, types.NotFound(kind)
	}
	return id, nil
}

// parseBody decodes the request body. An empty body decodes as {}.
// Fields of the wrong type are left for validation to report; only a body
// that cannot be parsed at all is rejected here.
func parseBody(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid input")
	}
	return nil
}

// ErrorHandler renders every error as the JSON error envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	if ce, ok := types.AsCustomError(err); ok {
		if ce.Code >= fiber.StatusInternalServerError {
			log.Printf("%s %s: %v", c.Method(), c.OriginalURL(), ce)
		}
		return utils.CustomErrorResponse(c, ce)
	}

	if fe, ok := err.(*fiber.Error); ok {
		errorType := "http"
		if fe.Code == fiber.StatusBadRequest {
			errorType = "validation.input"
		}
		return utils.ErrorResponse(c, fe.Message, fe.Code, errorType)
	}

	log.Printf("%s %s: unhandled error: %v", c.Method(), c.OriginalURL(), err)
	return utils.ErrorResponse(c, "Server Error", fiber.StatusInternalServerError, "unknown")
}

// NotFound handles requests that matched no route
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}
