package security

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"jobquote/internal/core/apperror"
)

// Authorizer answers capability questions. Implementations must be safe for concurrent use.
type Authorizer interface {
	Can(ctx context.Context, p Principal, action Action) bool
}

// Require returns FORBIDDEN if the principal lacks the capability.
func Require(ctx context.Context, authz Authorizer, p Principal, action Action) error {
	if authz == nil {
		return nil
	}
	if !authz.Can(ctx, p, action) {
		return apperror.NewForbidden(fmt.Sprintf("role %q may not perform %s", p.Role, action)).
			WithDetail("action", string(action)).
			WithDetail("role", string(p.Role))
	}
	return nil
}

// DefaultPolicies maps every action to a CEL expression over `role` and `principal_id`.
func DefaultPolicies() map[Action]string {
	return map[Action]string{
		ActionRead:              `true`,
		ActionCreate:            `role in ["admin", "sales"]`,
		ActionEdit:              `role in ["admin", "sales", "engineer"]`,
		ActionDelete:            `role in ["admin", "sales"]`,
		ActionRecalculate:       `role in ["admin", "sales", "engineer"]`,
		ActionSubmit:            `role in ["admin", "sales"]`,
		ActionEngineerApprove:   `role in ["admin", "engineer"]`,
		ActionManagementApprove: `role in ["admin", "manager"]`,
		ActionReject:            `role in ["admin", "engineer", "manager"]`,
		ActionIssue:             `role in ["admin", "manager", "sales"]`,
		ActionReopen:            `role in ["admin", "sales"]`,
		ActionViewStatistics:    `role in ["admin", "manager", "sales"]`,
		ActionViewAuditTrail:    `principal_id != ""`,
	}
}

// CELAuthorizer evaluates compiled CEL programs per action.
// Unknown actions and evaluation failures deny.
type CELAuthorizer struct {
	mu       sync.RWMutex
	env      *cel.Env
	programs map[Action]cel.Program
}

var _ Authorizer = (*CELAuthorizer)(nil)

// NewCELAuthorizer compiles the given policies.
func NewCELAuthorizer(policies map[Action]string) (*CELAuthorizer, error) {
	env, err := cel.NewEnv(
		cel.Variable("role", cel.StringType),
		cel.Variable("principal_id", cel.StringType),
		cel.Variable("action", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	a := &CELAuthorizer{
		env:      env,
		programs: make(map[Action]cel.Program, len(policies)),
	}
	for action, expr := range policies {
		if err := a.SetPolicy(action, expr); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// SetPolicy compiles expr and installs it for action.
func (a *CELAuthorizer) SetPolicy(action Action, expr string) error {
	ast, iss := a.env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return fmt.Errorf("compile policy %s: %w", action, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return fmt.Errorf("policy %s must evaluate to bool, got %s", action, ast.OutputType())
	}
	prg, err := a.env.Program(ast)
	if err != nil {
		return fmt.Errorf("program %s: %w", action, err)
	}

	a.mu.Lock()
	a.programs[action] = prg
	a.mu.Unlock()
	return nil
}

// Can implements Authorizer.
func (a *CELAuthorizer) Can(_ context.Context, p Principal, action Action) bool {
	if p.IsZero() {
		return false
	}

	a.mu.RLock()
	prg, ok := a.programs[action]
	a.mu.RUnlock()
	if !ok {
		return false
	}

	out, _, err := prg.Eval(map[string]any{
		"role":         string(p.Role),
		"principal_id": p.ID,
		"action":       string(action),
	})
	if err != nil {
		return false
	}
	allowed, ok := out.Value().(bool)
	return ok && allowed
}

// AllowAll grants every capability. Used in tests and local tooling.
type AllowAll struct{}

func (AllowAll) Can(context.Context, Principal, Action) bool { return true }
