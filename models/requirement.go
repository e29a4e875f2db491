package models

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// Comparison is the operator applied between an observed metric and a
// requirement threshold.
type Comparison string

const (
	CmpGTE Comparison = ">="
	CmpGT  Comparison = ">"
	CmpEQ  Comparison = "=="
	CmpLTE Comparison = "<="
	CmpLT  Comparison = "<"
)

// Holds reports whether `have <cmp> want` is true. An unknown operator never
// holds, so a malformed catalog row can only withhold an unlock, not grant one.
func (c Comparison) Holds(have, want int64) bool {
	switch c {
	case CmpGTE:
		return have >= want
	case CmpGT:
		return have > want
	case CmpEQ:
		return have == want
	case CmpLTE:
		return have <= want
	case CmpLT:
		return have < want
	}
	return false
}

// RequirementKind tags the closed set of requirement variants.
type RequirementKind string

const (
	KindCountThreshold      RequirementKind = "count_threshold"
	KindStreakThreshold     RequirementKind = "streak_threshold"
	KindGoalCompletionCount RequirementKind = "goal_completion_count"
	KindTimeWindowFlag      RequirementKind = "time_window_flag"
	KindCategoryCount       RequirementKind = "category_count"
	KindSetMembershipCount  RequirementKind = "set_membership_count"
)

// Requirement is one testable unlock condition. The set of implementations is
// closed; evaluation does an exhaustive type switch over it.
type Requirement interface {
	Kind() RequirementKind
}

// CountThreshold compares the number of applications (total, or restricted to
// one status) against a threshold.
type CountThreshold struct {
	Status ApplicationStatus `json:"status,omitempty"` // empty = all applications
	Cmp    Comparison        `json:"cmp"`
	Value  int64             `json:"value"`
}

func (CountThreshold) Kind() RequirementKind { return KindCountThreshold }

// StreakThreshold compares the current (or longest) day streak against a
// threshold.
type StreakThreshold struct {
	Longest bool       `json:"longest,omitempty"`
	Cmp     Comparison `json:"cmp"`
	Value   int64      `json:"value"`
}

func (StreakThreshold) Kind() RequirementKind { return KindStreakThreshold }

// GoalCompletionCount compares the number of completed goals (optionally for
// one period) against a threshold.
type GoalCompletionCount struct {
	Period GoalPeriod `json:"period,omitempty"` // empty = any period
	Cmp    Comparison `json:"cmp"`
	Value  int64      `json:"value"`
}

func (GoalCompletionCount) Kind() RequirementKind { return KindGoalCompletionCount }

// TimeWindow names a submission time-of-day window.
type TimeWindow string

const (
	WindowEarlyBird TimeWindow = "early_bird" // before 09:00 local
	WindowNightOwl  TimeWindow = "night_owl"  // 22:00 or later local
)

// TimeWindowFlag holds when the user has at least one application submitted
// inside the named window.
type TimeWindowFlag struct {
	Window TimeWindow `json:"window"`
}

func (TimeWindowFlag) Kind() RequirementKind { return KindTimeWindowFlag }

// CategoryCount compares the number of applications carrying an attachment of
// the given category against a threshold.
type CategoryCount struct {
	Category AttachmentCategory `json:"category"`
	Cmp      Comparison         `json:"cmp"`
	Value    int64              `json:"value"`
}

func (CategoryCount) Kind() RequirementKind { return KindCategoryCount }

// SetMembershipCount compares the number of applications whose company belongs
// to a named company set against a threshold.
type SetMembershipCount struct {
	Set   string     `json:"set"`
	Cmp   Comparison `json:"cmp"`
	Value int64      `json:"value"`
}

func (SetMembershipCount) Kind() RequirementKind { return KindSetMembershipCount }

// requirementEnvelope is the persisted JSONB shape: the variant payload plus a
// "kind" discriminator.
type requirementEnvelope struct {
	Kind    RequirementKind `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalRequirements encodes an ordered requirement list into the JSONB
// column format of the catalog table.
func MarshalRequirements(reqs []Requirement) (datatypes.JSON, error) {
	envelopes := make([]requirementEnvelope, 0, len(reqs))
	for _, r := range reqs {
		payload, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("marshal requirement %s: %w", r.Kind(), err)
		}
		envelopes = append(envelopes, requirementEnvelope{Kind: r.Kind(), Payload: payload})
	}
	return json.Marshal(envelopes)
}

// UnmarshalRequirements decodes a catalog JSONB column back into typed
// requirements. An unknown kind is an error: a catalog newer than the binary
// must disable evaluation rather than silently skip conditions.
func UnmarshalRequirements(raw datatypes.JSON) ([]Requirement, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var envelopes []requirementEnvelope
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return nil, fmt.Errorf("decode requirement list: %w", err)
	}
	reqs := make([]Requirement, 0, len(envelopes))
	for _, env := range envelopes {
		var (
			req Requirement
			err error
		)
		switch env.Kind {
		case KindCountThreshold:
			var r CountThreshold
			err = json.Unmarshal(env.Payload, &r)
			req = r
		case KindStreakThreshold:
			var r StreakThreshold
			err = json.Unmarshal(env.Payload, &r)
			req = r
		case KindGoalCompletionCount:
			var r GoalCompletionCount
			err = json.Unmarshal(env.Payload, &r)
			req = r
		case KindTimeWindowFlag:
			var r TimeWindowFlag
			err = json.Unmarshal(env.Payload, &r)
			req = r
		case KindCategoryCount:
			var r CategoryCount
			err = json.Unmarshal(env.Payload, &r)
			req = r
		case KindSetMembershipCount:
			var r SetMembershipCount
			err = json.Unmarshal(env.Payload, &r)
			req = r
		default:
			return nil, fmt.Errorf("unknown requirement kind %q", env.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s requirement: %w", env.Kind, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
