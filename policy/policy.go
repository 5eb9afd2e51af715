// Package policy holds the per-action authorization table. Role checks used
// to live scattered in every handler; here they are one declarative casbin
// table evaluated through Allow.
package policy

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"

	"civicpulse/model"
)

// Actions understood by the table. Ownership is expressed through the
// pseudo-subject "owner", granted when the actor id equals the report owner.
const (
	ActReportCreate      = "report:create"
	ActReportCancel      = "report:cancel"
	ActReportAcknowledge = "report:acknowledge"
	ActReportClose       = "report:close"
	ActReportFeedback    = "report:feedback"
	ActReportUpdate      = "report:update"
	ActReportSetStatus   = "report:set-status"
	ActReportDelete      = "report:delete"
	ActReportReadAny     = "report:read-any"
	ActReportAssign      = "report:assign"
	ActUserManage        = "user:manage"
	ActOrgWrite          = "org:write"
)

const ownerSubject = "owner"

const modelText = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

var rules = [][]string{
	{model.RoleCitizen, ActReportCreate},

	{ownerSubject, ActReportCancel},
	{ownerSubject, ActReportAcknowledge},
	{ownerSubject, ActReportClose},
	{ownerSubject, ActReportFeedback},

	{ownerSubject, ActReportUpdate},
	{model.RoleOfficer, ActReportUpdate},
	{model.RoleAdmin, ActReportUpdate},

	// Free-form status changes stay a staff power; citizens only move
	// their own reports through cancel/close/acknowledge.
	{model.RoleOfficer, ActReportSetStatus},
	{model.RoleAdmin, ActReportSetStatus},

	{ownerSubject, ActReportDelete},
	{model.RoleAdmin, ActReportDelete},

	{model.RoleOfficer, ActReportReadAny},
	{model.RoleAdmin, ActReportReadAny},

	{model.RoleAdmin, ActReportAssign},
	{model.RoleAdmin, ActUserManage},
	{model.RoleAdmin, ActOrgWrite},
}

var (
	once     sync.Once
	enforcer *casbin.Enforcer
	initErr  error
)

func load() (*casbin.Enforcer, error) {
	once.Do(func() {
		m, err := casbinmodel.NewModelFromString(modelText)
		if err != nil {
			initErr = err
			return
		}
		e, err := casbin.NewEnforcer(m)
		if err != nil {
			initErr = err
			return
		}
		for _, rule := range rules {
			if _, err := e.AddPolicy(rule[0], rule[1]); err != nil {
				initErr = err
				return
			}
		}
		enforcer = e
	})
	return enforcer, initErr
}

// Actor is the authenticated principal as seen by the policy table.
type Actor struct {
	ID   string
	Role string
}

// IsOwner reports whether the actor owns the given resource.
func (a Actor) IsOwner(ownerID string) bool {
	return ownerID != "" && a.ID == ownerID
}

// Allow decides whether actor may perform act on a resource owned by
// ownerID (empty for ownerless actions). The error distinguishes ownership
// violations (ErrUnauthorized) from pure role violations (ErrForbidden),
// which map to 401 and 403 respectively.
func Allow(actor Actor, act string, ownerID string) error {
	e, err := load()
	if err != nil {
		return fmt.Errorf("policy table: %w", err)
	}

	if ok, err := e.Enforce(actor.Role, act); err != nil {
		return fmt.Errorf("policy enforce: %w", err)
	} else if ok {
		return nil
	}

	ownerRule, err := e.Enforce(ownerSubject, act)
	if err != nil {
		return fmt.Errorf("policy enforce: %w", err)
	}
	if ownerRule {
		if actor.IsOwner(ownerID) {
			return nil
		}
		return fmt.Errorf("%w: only the reporting citizen may do this", model.ErrUnauthorized)
	}
	return fmt.Errorf("%w: role %q may not %s", model.ErrForbidden, actor.Role, act)
}
