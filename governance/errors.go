// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package governance

import (
	"errors"
	"fmt"
	"regexp"
)

// Kind classifies a command failure for callers that map errors onto a
// transport, such as HTTP status codes
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindConflict
	KindStateInvariant
	KindNotFound
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindStateInvariant:
		return "state_invariant"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Error is a rejected command. Code is a stable reason that clients can
// match on. Two errors are equal under errors.Is when their codes match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidArgument = &Error{
		Kind:    KindValidation,
		Code:    "invalid_argument",
		Message: "invalid argument",
	}
	ErrDelegationSelf = &Error{
		Kind:    KindValidation,
		Code:    "delegation_self",
		Message: "cannot delegate to self",
	}
	ErrDelegationCycle = &Error{
		Kind:    KindStateInvariant,
		Code:    "delegation_cycle",
		Message: "delegation would create a cycle",
	}
	ErrVotePaused = &Error{
		Kind:    KindStateInvariant,
		Code:    "vote_paused",
		Message: "chamber vote is paused while the veto window is open",
	}
	ErrIllegalTransition = &Error{
		Kind:    KindStateInvariant,
		Code:    "illegal_transition",
		Message: "illegal stage transition",
	}
	ErrChamberDissolved = &Error{
		Kind:    KindStateInvariant,
		Code:    "chamber_dissolved",
		Message: "chamber is dissolved",
	}
	ErrChamberProtected = &Error{
		Kind:    KindStateInvariant,
		Code:    "chamber_protected",
		Message: "the general chamber cannot be dissolved",
	}
	ErrStageConflict = &Error{
		Kind:    KindConflict,
		Code:    "stage_conflict",
		Message: "proposal is not in the expected stage",
	}
	ErrPoolWindowClosed = &Error{
		Kind:    KindConflict,
		Code:    "pool_window_closed",
		Message: "pool window has closed",
	}
	ErrVoteWindowClosed = &Error{
		Kind:    KindConflict,
		Code:    "vote_window_closed",
		Message: "vote window has closed",
	}
	ErrVetoNotOpen = &Error{
		Kind:    KindConflict,
		Code:    "veto_not_open",
		Message: "proposal has not passed its chamber vote",
	}
	ErrVetoWindowClosed = &Error{
		Kind:    KindConflict,
		Code:    "veto_window_closed",
		Message: "veto window has closed",
	}
	ErrProposalExists = &Error{
		Kind:    KindConflict,
		Code:    "proposal_exists",
		Message: "proposal already exists",
	}
	ErrChamberExists = &Error{
		Kind:    KindConflict,
		Code:    "chamber_exists",
		Message: "chamber already exists",
	}
	ErrMeritExists = &Error{
		Kind:    KindConflict,
		Code:    "merit_exists",
		Message: "merit already awarded for proposal",
	}
	ErrEraConflict = &Error{
		Kind:    KindConflict,
		Code:    "era_conflict",
		Message: "era changed concurrently",
	}
	ErrProposalNotFound = &Error{
		Kind:    KindNotFound,
		Code:    "proposal_not_found",
		Message: "proposal not found",
	}
	ErrChamberNotFound = &Error{
		Kind:    KindNotFound,
		Code:    "chamber_not_found",
		Message: "chamber not found",
	}
	ErrForbidden = &Error{
		Kind:    KindForbidden,
		Code:    "forbidden",
		Message: "actor may not perform this command",
	}
	ErrNotVetoMember = &Error{
		Kind:    KindForbidden,
		Code:    "not_veto_member",
		Message: "voter is not on the veto council for this proposal",
	}
)

// newError returns a copy of base carrying a more specific message
func newError(base *Error, format string, args ...any) *Error {
	return &Error{
		Kind:    base.Kind,
		Code:    base.Code,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf returns the kind of a domain error, or 0 for any other error
func KindOf(err error) Kind {
	var govErr *Error
	if errors.As(err, &govErr) {
		return govErr.Kind
	}
	return 0
}

// committedError carries a domain error out of a command whose writes must
// still be committed, such as the finalization performed before rejecting
// a late vote
type committedError struct {
	err error
}

func (c *committedError) Error() string {
	return c.err.Error()
}

func (c *committedError) Unwrap() error {
	return c.err
}

func commitThen(err error) error {
	return &committedError{err: err}
}

var identifierRegexp = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,127}$`)

// validateIdentifier checks proposal ids, chamber ids and addresses
func validateIdentifier(field, value string) error {
	if !identifierRegexp.MatchString(value) {
		return newError(ErrInvalidArgument, "malformed %s: %q", field, value)
	}
	return nil
}
