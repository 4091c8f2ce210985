// policy.go
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

// Package policy decides which actor may perform which action on recipes and
// reference catalog entries. Decisions are pure; callers supply the stored owner.
package policy

import (
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/types"
)

// Action is an operation subject to authorization
type Action string

const (
	ViewAny Action = "viewAny"
	View    Action = "view"
	Create  Action = "create"
	Update  Action = "update"
	Delete  Action = "delete"
)

// Decision is the outcome of a policy check
type Decision int

const (
	Deny Decision = iota
	Allow
)

// Actor is the authenticated principal a request acts as.
// A nil *Actor means the request is unauthenticated.
type Actor struct {
	ID    uint64
	Admin bool
}

// ActorFor builds the actor for a user, nil for no user
func ActorFor(u *models.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{ID: u.ID, Admin: u.IsAdmin()}
}

// Owns reports whether the actor is the owning user
func (a *Actor) Owns(o models.Owner) bool {
	id, ok := o.UserID()
	return a != nil && ok && id == a.ID
}

// DecideCatalog applies the cuisine and ingredient rules
func DecideCatalog(actor *Actor, action Action, owner models.Owner) Decision {
	if actor == nil {
		return Deny
	}

	switch action {
	case ViewAny, View, Create:
		return Allow
	case Update, Delete:
		if owner.IsSystem() {
			return allowIf(actor.Admin)
		}
		return allowIf(actor.Owns(owner) || actor.Admin)
	}
	return Deny
}

// DecideRecipe applies the recipe rules
func DecideRecipe(actor *Actor, action Action, ownerID uint64) Decision {
	if actor == nil {
		return Deny
	}

	switch action {
	case ViewAny, Create:
		return Allow
	case View, Update, Delete:
		return allowIf(ownerID == actor.ID || actor.Admin)
	}
	return Deny
}

// AuthorizeCatalog returns nil when allowed, otherwise the 401 or 403 error
func AuthorizeCatalog(actor *Actor, action Action, owner models.Owner) error {
	if actor == nil {
		return types.ErrAuthenticationRequired
	}
	if DecideCatalog(actor, action, owner) == Deny {
		return types.ErrForbidden
	}
	return nil
}

// AuthorizeRecipe returns nil when allowed, otherwise the 401 or 403 error
func AuthorizeRecipe(actor *Actor, action Action, ownerID uint64) error {
	if actor == nil {
		return types.ErrAuthenticationRequired
	}
	if DecideRecipe(actor, action, ownerID) == Deny {
		return types.ErrForbidden
	}
	return nil
}

func allowIf(ok bool) Decision {
	if ok {
		return Allow
	}
	return Deny
}
