package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/koscakluka/ema-realtime/core/events"
	"github.com/koscakluka/ema-realtime/core/tools"
	"github.com/koscakluka/ema-realtime/core/trivia"
)

func hostSignalFor(name tools.Name) (events.HostSignalName, bool) {
	switch name {
	case tools.HostStart:
		return events.HostStart, true
	case tools.HostStop:
		return events.HostStop, true
	case tools.HostInvite:
		return events.HostInviteNow, true
	case tools.HostClosing:
		return events.HostClosing, true
	case tools.HostResume:
		return events.HostResume, true
	}
	return "", false
}

func (e *Engine) signalHost(name tools.Name) toolResult {
	signal, ok := hostSignalFor(name)
	if !ok {
		return failure(name, ErrorKindUnknownTool, fmt.Errorf("%s is not a host signal", name))
	}

	e.emit(events.NewHostSignal(signal))
	return toolResult{output: map[string]any{"signal": string(signal)}}
}

func (e *Engine) playMedia(ctx context.Context) toolResult {
	if e.media == nil {
		return failure(tools.MediaPlay, ErrorKindCollaborator, errors.New("no media player configured"))
	}

	if err := e.media.Play(ctx); err != nil {
		e.emit(events.NewMediaStatusUpdated(false, true, "Playback blocked"))
		result := failure(tools.MediaPlay, ErrorKindCollaborator, fmt.Errorf("playback blocked: %w", err))
		result.status = "Playback blocked"
		return result
	}

	e.emit(events.NewMediaStatusUpdated(true, false, "Playing"))
	return toolResult{output: map[string]any{"playing": true}, status: "Playing"}
}

func (e *Engine) stopMedia() toolResult {
	if e.media == nil {
		return failure(tools.MediaStop, ErrorKindCollaborator, errors.New("no media player configured"))
	}

	if err := e.media.Pause(); err != nil {
		return failure(tools.MediaStop, ErrorKindCollaborator, err)
	}

	e.emit(events.NewMediaStatusUpdated(false, false, "Paused"))
	return toolResult{output: map[string]any{"playing": false}, status: "Paused"}
}

func (e *Engine) startTrivia(args map[string]any) toolResult {
	session, err := trivia.New(tools.Strings(args, "players"), e.triviaOptions...)
	if err != nil {
		return toolResult{output: map[string]any{"started": false, "reason": err.Error()}, status: "Trivia needs players"}
	}

	e.mu.Lock()
	e.state.trivia = session
	e.mu.Unlock()

	player, question := session.CurrentPlayer(), session.CurrentQuestion()
	e.emit(events.NewTriviaQuestionAsked(player, question.Prompt, session.Round()))

	return toolResult{
		output: map[string]any{
			"started":  true,
			"players":  session.Players(),
			"rounds":   trivia.Rounds,
			"player":   player,
			"question": question.Prompt,
			"answer":   question.Answer,
		},
		status:    "Trivia started",
		narration: fmt.Sprintf("Trivia is on with %s, %d rounds. Ask %s: %s", strings.Join(session.Players(), ", "), trivia.Rounds, player, question.Prompt),
	}
}

func (e *Engine) answerTrivia(args map[string]any) toolResult {
	e.mu.Lock()
	session := e.state.trivia
	e.mu.Unlock()
	if !session.Started() {
		return toolResult{output: map[string]any{"active": false}, status: "No trivia game in progress"}
	}

	correct, _ := tools.Bool(args, "correct")
	turn, err := session.Answer(tools.String(args, "player"), correct)
	if err != nil {
		return toolResult{output: map[string]any{"active": false}, status: "No trivia game in progress"}
	}

	output := map[string]any{
		"player":  turn.Player,
		"correct": turn.Correct,
		"scores":  session.Scores(),
		"round":   session.Round(),
	}

	if turn.Finished {
		e.mu.Lock()
		if e.state.trivia == session {
			e.state.trivia = nil
		}
		e.mu.Unlock()

		summary := turn.Summary.String()
		e.emit(events.NewTriviaFinished(turn.Summary.Winner, session.Scores(), summary))
		output["finished"] = true
		output["winner"] = turn.Summary.Winner
		return toolResult{output: output, status: "Trivia finished", narration: "The trivia game is over. " + summary}
	}

	e.emit(events.NewTriviaQuestionAsked(turn.NextPlayer, turn.NextQuestion.Prompt, session.Round()))
	output["nextPlayer"] = turn.NextPlayer
	output["question"] = turn.NextQuestion.Prompt
	output["answer"] = turn.NextQuestion.Answer
	return toolResult{
		output:    output,
		status:    fmt.Sprintf("Trivia round %d of %d", session.Round()+1, trivia.Rounds),
		narration: fmt.Sprintf("Next up is %s: %s", turn.NextPlayer, turn.NextQuestion.Prompt),
	}
}
