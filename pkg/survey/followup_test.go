package survey

import (
	"testing"

	"ai-survey-be/internal/constant"

	"github.com/stretchr/testify/assert"
)

func TestFollowUp_VagueAnswer(t *testing.T) {
	p := NewFollowUpPolicy()

	assert.True(t, p.NeedsFollowUp("oui", 2, constant.MaxQuestionsPerSession))
	assert.True(t, p.NeedsFollowUp("  Peut-être  ", 2, constant.MaxQuestionsPerSession))
	assert.True(t, p.NeedsFollowUp("je ne sais pas", 2, constant.MaxQuestionsPerSession))
}

func TestFollowUp_ShortAnswer(t *testing.T) {
	p := NewFollowUpPolicy()

	assert.True(t, p.NeedsFollowUp("pas souvent", 2, constant.MaxQuestionsPerSession))
	assert.False(t, p.NeedsFollowUp("Je travaille dans le secteur bancaire depuis dix ans.", 2, constant.MaxQuestionsPerSession))
}

func TestFollowUp_ElaborationKeyword(t *testing.T) {
	p := NewFollowUpPolicy()

	// Long enough and not vague, but signals there is more to dig into.
	assert.True(t, p.NeedsFollowUp("C'est compliqué, ça dépend vraiment des projets en cours.", 2, constant.MaxQuestionsPerSession))
}

func TestFollowUp_ReserveSlotsGuard(t *testing.T) {
	p := NewFollowUpPolicy()

	// With fewer than ReserveSlots questions left, even a vague answer
	// moves on instead of burning a slot on a follow-up.
	assert.False(t, p.NeedsFollowUp("oui", 9, constant.MaxQuestionsPerSession))
	assert.True(t, p.NeedsFollowUp("oui", 8, constant.MaxQuestionsPerSession))
}

func TestFollowUp_VagueListIsExactMatch(t *testing.T) {
	p := NewFollowUpPolicy()

	// "normalement" contains "normal" but is not an exact vague answer;
	// it still follows up because of its length, so pad it out.
	assert.False(t, p.NeedsFollowUp("Normalement je gère ça moi-même au bureau.", 2, constant.MaxQuestionsPerSession))
}
