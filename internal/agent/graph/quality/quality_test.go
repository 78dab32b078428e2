package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const goodResponse = "현재 Python 개발자는 12명이 등록되어 있습니다. 구체적으로는 백엔드 8명, 데이터 4명입니다. " +
	"시니어 후보 위주의 접촉을 추천드립니다."

func TestScoreAllChecksPass(t *testing.T) {
	assert.InDelta(t, 1.0, Score(goodResponse), 1e-9)
}

func TestScoreStepsOfOneThird(t *testing.T) {
	// long enough, no markers
	long := strings.Repeat("가나다라마바사아자차 ", 10)
	assert.InDelta(t, 1.0/3.0, Score(long), 1e-9)

	// long + concreteness, no actionability
	assert.InDelta(t, 2.0/3.0, Score(long+" 구체적"), 1e-9)

	// short, no markers
	assert.InDelta(t, 0.0, Score("짧은 답"), 1e-9)
}

func TestScoreLengthCountsRunes(t *testing.T) {
	// 51 Korean runes pass the floor even though their byte length is 3x
	assert.True(t, Evaluate(strings.Repeat("가", 51)).Checks[CheckLength])
	assert.False(t, Evaluate(strings.Repeat("가", 50)).Checks[CheckLength])
}

func TestScoreMarkerAlternatives(t *testing.T) {
	long := strings.Repeat("a", 60)
	for _, marker := range []string{"추천", "권장", "제안"} {
		assert.True(t, Evaluate(long+marker).Checks[CheckActionability], marker)
	}
	assert.True(t, Evaluate(long+"예시").Checks[CheckConcreteness])
}

func TestScoreDeterministic(t *testing.T) {
	first := Score(goodResponse)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Score(goodResponse))
	}
}

func TestEvaluateEmpty(t *testing.T) {
	report := Evaluate("")
	assert.Zero(t, report.Score)
	assert.False(t, report.Checks[CheckLength])
}
