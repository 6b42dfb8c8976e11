package survey

import (
	"strings"

	"ai-survey-be/internal/constant"
)

// FollowUpPolicy decides whether an answer deserves a same-category
// follow-up question. Word lists are injected so they can be swapped or
// tested independently of the control flow.
type FollowUpPolicy struct {
	MinAnswerLength     int
	VagueAnswers        []string
	ElaborationKeywords []string
	// ReserveSlots is how many question slots must remain before a
	// follow-up is allowed, so the tail of the budget keeps room for the
	// other categories.
	ReserveSlots int
}

func NewFollowUpPolicy() *FollowUpPolicy {
	return &FollowUpPolicy{
		MinAnswerLength:     constant.MinAnswerLength,
		VagueAnswers:        constant.VagueAnswers,
		ElaborationKeywords: constant.ElaborationKeywords,
		ReserveSlots:        constant.FollowUpReserveSlots,
	}
}

// NeedsFollowUp reports whether the answer is short, vague or signals it
// needs elaboration, provided enough question slots remain.
func (p *FollowUpPolicy) NeedsFollowUp(answer string, questionCount, maxQuestions int) bool {
	if maxQuestions-questionCount < p.ReserveSlots {
		return false
	}
	return p.isShort(answer) || p.isVague(answer) || p.needsElaboration(answer)
}

func (p *FollowUpPolicy) isShort(answer string) bool {
	return len(strings.TrimSpace(answer)) < p.MinAnswerLength
}

func (p *FollowUpPolicy) isVague(answer string) bool {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	for _, vague := range p.VagueAnswers {
		if normalized == vague {
			return true
		}
	}
	return false
}

func (p *FollowUpPolicy) needsElaboration(answer string) bool {
	lower := strings.ToLower(answer)
	for _, keyword := range p.ElaborationKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
