package services

import (
	"strings"

	"iris-api/models"
	"iris-api/utils"
)

// ReviewerRole identifies which stage of grassroot review is acting.
type ReviewerRole string

const (
	ReviewerRM  ReviewerRole = "RM"
	ReviewerIBU ReviewerRole = "IBU"
)

type ReviewAction string

const (
	ActionApprove ReviewAction = "APPROVE"
	ActionReject  ReviewAction = "REJECT"
	ActionRework  ReviewAction = "REWORK"
)

// ideaWorkflow is the single transition table for grassroot ideas: the
// status each role reviews from, and the outcome of each action.
var ideaWorkflow = map[ReviewerRole]struct {
	pending  models.IdeaStatus
	outcomes map[ReviewAction]models.IdeaStatus
}{
	ReviewerRM: {
		pending: models.IdeaSubmittedRM,
		outcomes: map[ReviewAction]models.IdeaStatus{
			ActionApprove: models.IdeaApprovedRM,
			ActionReject:  models.IdeaRejectedRM,
			ActionRework:  models.IdeaReworkRM,
		},
	},
	ReviewerIBU: {
		pending: models.IdeaApprovedRM,
		outcomes: map[ReviewAction]models.IdeaStatus{
			ActionApprove: models.IdeaApprovedIBU,
			ActionReject:  models.IdeaRejectedIBU,
			ActionRework:  models.IdeaReworkIBU,
		},
	},
}

func ParseReviewerRole(s string) (ReviewerRole, error) {
	role := ReviewerRole(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := ideaWorkflow[role]; !ok {
		return "", invalid("role", "must be RM or IBU")
	}
	return role, nil
}

func ParseReviewAction(s string) (ReviewAction, error) {
	switch a := ReviewAction(strings.ToUpper(strings.TrimSpace(s))); a {
	case ActionApprove, ActionReject, ActionRework:
		return a, nil
	}
	return "", invalid("action", "must be APPROVE, REJECT or REWORK")
}

func ParseIdeaStatus(s string) (models.IdeaStatus, error) {
	st := models.IdeaStatus(utils.CanonicalStatus(s))
	for _, known := range models.IdeaStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", invalid("status", "unknown idea status %q", s)
}

// PendingStatus is the status an idea must hold for role to review it.
func PendingStatus(role ReviewerRole) models.IdeaStatus {
	return ideaWorkflow[role].pending
}

// NextIdeaStatus applies the transition table. It fails with an
// InvalidTransitionError when current is not the role's pending status.
func NextIdeaStatus(ideaID string, current models.IdeaStatus, role ReviewerRole, action ReviewAction) (models.IdeaStatus, error) {
	stage, ok := ideaWorkflow[role]
	if !ok {
		return "", invalid("role", "must be RM or IBU")
	}
	target, ok := stage.outcomes[action]
	if !ok {
		return "", invalid("action", "must be APPROVE, REJECT or REWORK")
	}
	if current != stage.pending {
		return "", &InvalidTransitionError{Entity: "idea", ID: ideaID, From: string(current), To: string(target)}
	}
	return target, nil
}

// ResolveTargetStatus maps a requested outcome status back to the (role,
// action) pair that produces it.
func ResolveTargetStatus(target models.IdeaStatus) (ReviewerRole, ReviewAction, error) {
	for role, stage := range ideaWorkflow {
		for action, outcome := range stage.outcomes {
			if outcome == target {
				return role, action, nil
			}
		}
	}
	return "", "", invalid("status", "%s is not a review outcome", target)
}

// IsTerminal reports whether no further review applies to status.
func IsTerminal(status models.IdeaStatus) bool {
	for _, stage := range ideaWorkflow {
		if stage.pending == status {
			return false
		}
	}
	return true
}

var challengeTransitions = map[models.ChallengeStatus]models.ChallengeStatus{
	models.ChallengeDraft:     models.ChallengeLive,
	models.ChallengeLive:      models.ChallengeCompleted,
	models.ChallengeCompleted: models.ChallengeArchived,
}

func CanTransitionChallenge(from, to models.ChallengeStatus) bool {
	next, ok := challengeTransitions[from]
	return ok && next == to
}

func ParseChallengeStatus(s string) (models.ChallengeStatus, error) {
	st := models.ChallengeStatus(utils.CanonicalStatus(s))
	switch st {
	case models.ChallengeDraft, models.ChallengeLive, models.ChallengeCompleted, models.ChallengeArchived:
		return st, nil
	}
	return "", invalid("status", "unknown challenge status %q", s)
}

// Panel caps per evaluation round.
const (
	MaxRound1Panels = 3
	MaxRound2Panels = 2
)

func PanelLimit(round int) (int, bool) {
	switch round {
	case 1:
		return MaxRound1Panels, true
	case 2:
		return MaxRound2Panels, true
	}
	return 0, false
}
