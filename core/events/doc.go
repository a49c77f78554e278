// Package events defines the typed event contract the realtime engine emits
// to its collaborators.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - assistant_response.*
//   - tool_call.*
//   - tool_state.*
//   - host.*
//   - silence.*
//   - media.*
//   - trivia.*
//   - scheduling.*
//   - session.*
//
// assistant_response events
//
//   - AssistantResponseSegment (assistant_response.segment): streamed response
//     text delta.
//   - AssistantResponseFinal (assistant_response.final): the runtime finished
//     the current response.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): dispatch began.
//   - ToolCallCompleted (tool_call.completed): handler succeeded.
//   - ToolCallFailed (tool_call.failed): handler reported an error.
//   - ToolCallSuppressed (tool_call.suppressed): a repeat delivery of the last
//     dispatch was dropped.
//
// tool_state events
//
//   - BusyChanged (tool_state.busy_changed): the in-flight counter crossed
//     between zero and non-zero.
//
// host events
//
//   - HostSignal (host.signal): named signal for the host-mode collaborator.
//
// silence events
//
//   - SilenceStarted (silence.started), SilenceTick (silence.tick) and
//     SilenceEnded (silence.ended) follow the silence window countdown.
//
// media events
//
//   - MediaStatusUpdated (media.status_updated): playback state after a media
//     tool ran. Blocked is set when the player refused to start.
//
// trivia events
//
//   - TriviaQuestionAsked (trivia.question_asked)
//   - TriviaFinished (trivia.finished)
//
// scheduling events
//
//   - AvailabilityChecked (scheduling.availability_checked)
//   - MeetingScheduled (scheduling.meeting_scheduled)
//
// session events
//
//   - StatusUpdated (session.status_updated): short operator-facing status.
//   - InstructionsSent (session.instructions_sent): a versioned session.update
//     went out.
package events
