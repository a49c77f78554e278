package events

const (
	KindTriviaQuestionAsked Kind = "trivia.question_asked"
	KindTriviaFinished      Kind = "trivia.finished"
)

// TriviaQuestionAsked announces whose turn it is and the question they get.
type TriviaQuestionAsked struct {
	Base
	Player   string
	Question string
	Round    int
}

func NewTriviaQuestionAsked(player, question string, round int) TriviaQuestionAsked {
	return TriviaQuestionAsked{Base: NewBase(KindTriviaQuestionAsked), Player: player, Question: question, Round: round}
}

type TriviaFinished struct {
	Base
	Winner  string
	Scores  map[string]int
	Summary string
}

func NewTriviaFinished(winner string, scores map[string]int, summary string) TriviaFinished {
	return TriviaFinished{Base: NewBase(KindTriviaFinished), Winner: winner, Scores: scores, Summary: summary}
}
