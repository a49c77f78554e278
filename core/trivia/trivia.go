// Package trivia implements the round based trivia game the agent hosts.
package trivia

import (
	"errors"
	"fmt"
	"strings"
)

// Rounds is the number of full rotations through the players.
const Rounds = 5

var (
	ErrNoPlayers  = errors.New("trivia needs at least one player")
	ErrNotStarted = errors.New("no trivia game in progress")
)

type Question struct {
	Prompt string
	Answer string
}

var defaultQuestions = []Question{
	{Prompt: "What is the largest planet in our solar system?", Answer: "Jupiter"},
	{Prompt: "How many continents are there?", Answer: "Seven"},
	{Prompt: "Which element has the chemical symbol O?", Answer: "Oxygen"},
	{Prompt: "In which year did the first person walk on the Moon?", Answer: "1969"},
	{Prompt: "What is the capital of Japan?", Answer: "Tokyo"},
	{Prompt: "How many sides does a hexagon have?", Answer: "Six"},
	{Prompt: "Which ocean is the largest?", Answer: "The Pacific Ocean"},
	{Prompt: "Who painted the Mona Lisa?", Answer: "Leonardo da Vinci"},
	{Prompt: "What is the fastest land animal?", Answer: "The cheetah"},
	{Prompt: "What gas do plants absorb from the air?", Answer: "Carbon dioxide"},
	{Prompt: "How many minutes are in a day?", Answer: "1440"},
	{Prompt: "Which planet is known as the Red Planet?", Answer: "Mars"},
}

type Option func(*Session)

// WithQuestions replaces the built-in question bank. Questions are asked in
// order and wrap around when exhausted.
func WithQuestions(questions ...Question) Option {
	return func(s *Session) {
		if len(questions) > 0 {
			s.questions = append([]Question(nil), questions...)
		}
	}
}

// Session is one game. It is not safe for concurrent use.
type Session struct {
	players   []string
	scores    map[string]int
	round     int
	current   int
	started   bool
	questions []Question
	asked     int
}

// New starts a game for the given players. Blank and repeated names are
// dropped.
func New(players []string, opts ...Option) (*Session, error) {
	s := &Session{scores: map[string]int{}, questions: defaultQuestions}
	for _, opt := range opts {
		opt(s)
	}

	for _, player := range players {
		player = strings.TrimSpace(player)
		if player == "" {
			continue
		}
		if _, ok := s.scores[player]; ok {
			continue
		}
		s.players = append(s.players, player)
		s.scores[player] = 0
	}
	if len(s.players) == 0 {
		return nil, ErrNoPlayers
	}

	s.started = true
	return s, nil
}

func (s *Session) Started() bool { return s != nil && s.started }
func (s *Session) Round() int    { return s.round }

func (s *Session) Players() []string {
	return append([]string(nil), s.players...)
}

func (s *Session) CurrentPlayer() string {
	return s.players[s.current]
}

func (s *Session) CurrentPlayerIndex() int {
	return s.current
}

func (s *Session) CurrentQuestion() Question {
	return s.questions[s.asked%len(s.questions)]
}

func (s *Session) Scores() map[string]int {
	scores := make(map[string]int, len(s.scores))
	for player, score := range s.scores {
		scores[player] = score
	}
	return scores
}

// Turn is the outcome of one answer.
type Turn struct {
	Player  string
	Correct bool
	Round   int

	Finished     bool
	NextPlayer   string
	NextQuestion Question
	Summary      *Summary
}

type Score struct {
	Player string
	Score  int
}

type Summary struct {
	// Scores are listed in player order.
	Scores []Score
	Winner string
	Tie    bool
}

func (s Summary) String() string {
	parts := make([]string, 0, len(s.Scores))
	for _, score := range s.Scores {
		parts = append(parts, fmt.Sprintf("%s %d", score.Player, score.Score))
	}
	result := "Final scores: " + strings.Join(parts, ", ") + "."
	if s.Tie {
		return result + " It's a tie, " + s.Winner + " takes it on order of play."
	}
	return result + " " + s.Winner + " wins!"
}

// Answer records an answer and advances the turn. An answer attributed to a
// name outside the game is credited to the current player.
func (s *Session) Answer(player string, correct bool) (Turn, error) {
	if !s.Started() {
		return Turn{}, ErrNotStarted
	}

	answering := s.players[s.current]
	for _, candidate := range s.players {
		if strings.EqualFold(candidate, strings.TrimSpace(player)) {
			answering = candidate
			break
		}
	}
	if correct {
		s.scores[answering]++
	}

	turn := Turn{Player: answering, Correct: correct, Round: s.round}

	s.asked++
	s.current = (s.current + 1) % len(s.players)
	if s.current == 0 {
		s.round++
	}

	if s.round >= Rounds {
		s.started = false
		summary := s.summary()
		turn.Finished = true
		turn.Summary = &summary
		return turn, nil
	}

	turn.NextPlayer = s.players[s.current]
	turn.NextQuestion = s.CurrentQuestion()
	return turn, nil
}

func (s *Session) summary() Summary {
	summary := Summary{}
	best := -1
	for _, player := range s.players {
		score := s.scores[player]
		summary.Scores = append(summary.Scores, Score{Player: player, Score: score})
		switch {
		case score > best:
			best = score
			summary.Winner = player
			summary.Tie = false
		case score == best:
			summary.Tie = true
		}
	}
	return summary
}
