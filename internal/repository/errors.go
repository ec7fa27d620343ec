// Package repository implements the data access layer on top of database/sql
// and Redis. This file defines sentinel errors shared across repositories so
// handlers can translate failures into the right HTTP responses without
// inspecting driver-specific error strings themselves.
package repository

import "errors"

// ErrNotFound is returned when a referenced row does not exist. Handlers
// translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an insert or update violates the unique
// email constraint on the users table.
var ErrEmailExists = errors.New("email already exists")

// ErrCompanyInUse is returned when a company cannot be deleted because
// accounts still reference it. Handlers translate it into HTTP 409.
var ErrCompanyInUse = errors.New("company has users assigned")

// ErrTokenReused is returned by the refresh blacklist when a jti has
// already been redeemed. The presenting client gets a 401 token_invalid.
var ErrTokenReused = errors.New("refresh token already used")

// ErrBlacklistUnavailable is returned when the blacklist backend cannot be
// reached. Refresh fails closed in that case so a replayed token can never
// slip through while Redis is down.
var ErrBlacklistUnavailable = errors.New("token blacklist unavailable")
