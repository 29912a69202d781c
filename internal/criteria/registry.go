// internal/criteria/registry.go
package criteria

import (
	"fmt"
	"sort"

	apperrors "hskk-assessor/internal/common/errors"
)

// Registry holds the validated task plan set. It is immutable after New.
type Registry struct {
	plans map[string]TaskPlan
}

// NewRegistry builds a registry from the built-in plan set.
func NewRegistry() (*Registry, error) {
	return NewRegistryWithPlans(builtinPlans())
}

// NewRegistryWithPlans builds a registry from an explicit plan list and
// validates every plan. A single bad plan fails startup.
func NewRegistryWithPlans(plans []TaskPlan) (*Registry, error) {
	r := &Registry{plans: make(map[string]TaskPlan, len(plans))}
	for _, plan := range plans {
		if err := validatePlan(plan); err != nil {
			return nil, apperrors.NewConfigurationError(
				fmt.Sprintf("task %q: %v", plan.TaskID, err))
		}
		if _, exists := r.plans[plan.TaskID]; exists {
			return nil, apperrors.NewConfigurationError(
				fmt.Sprintf("duplicate task id %q", plan.TaskID))
		}
		r.plans[plan.TaskID] = plan
	}
	if len(r.plans) == 0 {
		return nil, apperrors.NewConfigurationError("no task plans registered")
	}
	return r, nil
}

func validatePlan(plan TaskPlan) error {
	if plan.TaskID == "" {
		return fmt.Errorf("empty task id")
	}
	if len(plan.Criteria) == 0 {
		return fmt.Errorf("no criteria")
	}

	seen := make(map[CriterionType]bool, len(plan.Criteria))
	for _, c := range plan.Criteria {
		if seen[c.Type] {
			return fmt.Errorf("duplicate criterion %q", c.Type)
		}
		seen[c.Type] = true

		if c.MaxScore <= 0 {
			return fmt.Errorf("criterion %q: max score must be positive, got %v", c.Type, c.MaxScore)
		}

		want, known := DefaultSourceFor[c.Type]
		if !known {
			return fmt.Errorf("unknown criterion type %q", c.Type)
		}
		if c.Source != want {
			return fmt.Errorf("criterion %q: source %q not allowed, must be %q", c.Type, c.Source, want)
		}
	}
	return nil
}

// Resolve returns the plan for a task id, or TASK_NOT_FOUND.
func (r *Registry) Resolve(taskID string) (TaskPlan, error) {
	plan, ok := r.plans[taskID]
	if !ok {
		return TaskPlan{}, apperrors.NewTaskNotFoundError(taskID)
	}
	return plan, nil
}

// Describe returns the plan plus its per-question maximum, for clients that
// render scoring forms.
func (r *Registry) Describe(taskID string) (TaskPlan, float64, error) {
	plan, err := r.Resolve(taskID)
	if err != nil {
		return TaskPlan{}, 0, err
	}
	return plan, plan.MaxTotal(), nil
}

// TaskIDs lists all registered task ids in stable order.
func (r *Registry) TaskIDs() []string {
	ids := make([]string, 0, len(r.plans))
	for id := range r.plans {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
