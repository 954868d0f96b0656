package messaging

import (
	"context"
	"log/slog"
	"time"

	"github.com/CampusLoop/CoursePilot/internal/actions"
	"github.com/CampusLoop/CoursePilot/internal/engine"
	"github.com/CampusLoop/CoursePilot/internal/extractor"
	"github.com/CampusLoop/CoursePilot/internal/models"
	"github.com/CampusLoop/CoursePilot/internal/store"
	"github.com/CampusLoop/CoursePilot/internal/util"
)

// ResponseHandler runs the full per-message pipeline: extract a candidate from
// the text, hand it to the engine, execute the action once complete, and
// produce the reply to send back. The API turn endpoint and the WhatsApp
// response loop share this pipeline.
type ResponseHandler struct {
	engine    *engine.Engine
	extractor extractor.Extractor
	executor  *actions.Executor
	store     store.Store
}

// NewResponseHandler creates a ResponseHandler over the given collaborators.
func NewResponseHandler(eng *engine.Engine, ext extractor.Extractor, exec *actions.Executor, st store.Store) *ResponseHandler {
	return &ResponseHandler{engine: eng, extractor: ext, executor: exec, store: st}
}

// ProcessMessage handles one incoming message for a conversation and returns
// the reply text plus the turn result. Extraction and engine failures are
// turn-level: the caller always gets a reply to send.
func (h *ResponseHandler) ProcessMessage(ctx context.Context, conversationID, message string) (string, models.TurnResult, error) {
	hint := h.buildHint(conversationID)

	candidate, err := h.extractor.Extract(ctx, message, hint)
	if err != nil {
		slog.Error("ResponseHandler.ProcessMessage: extraction failed", "conversationID", conversationID, "error", err)
		return engine.PromptNotUnderstood, models.TurnResult{ConversationID: conversationID}, nil
	}

	result, err := h.engine.HandleTurn(ctx, conversationID, candidate)
	if err != nil {
		return "", result, err
	}

	reply := result.Prompt
	if result.Ready {
		summary, execErr := h.executor.Execute(ctx, result.Action, result.Parameters)
		if execErr != nil {
			slog.Error("ResponseHandler.ProcessMessage: execution failed", "conversationID", conversationID, "action", result.Action, "error", execErr)
			reply = "Something went wrong completing that request. Please try again."
		} else {
			reply = summary
		}
	}
	if result.Notice != "" {
		reply = result.Notice + " " + reply
	}

	h.recordTurn(conversationID, message, result)
	return reply, result, nil
}

// buildHint loads the current ongoing action, if any, so bare answers can be
// attributed to the parameter that was just asked for.
func (h *ResponseHandler) buildHint(conversationID string) extractor.Hint {
	ongoing, ok := h.engine.Store().Get(conversationID)
	if !ok {
		return extractor.Hint{}
	}
	hint := extractor.Hint{OngoingAction: ongoing.Action}
	if len(ongoing.MissingParameters) > 0 {
		hint.NextParameter = ongoing.MissingParameters[0]
	}
	return hint
}

// recordTurn writes the audit entry. Failures are logged, not surfaced; the
// audit log never blocks a reply.
func (h *ResponseHandler) recordTurn(conversationID, message string, result models.TurnResult) {
	if h.store == nil {
		return
	}
	rec := models.TurnRecord{
		ID:             util.GenerateTurnID(),
		ConversationID: conversationID,
		Message:        message,
		Decision:       result.Decision,
		Action:         result.Action,
		Ready:          result.Ready,
		Prompt:         result.Prompt,
		Time:           time.Now().Unix(),
	}
	if err := h.store.AddTurnRecord(rec); err != nil {
		slog.Error("ResponseHandler.recordTurn: failed to persist turn record", "conversationID", conversationID, "error", err)
	}
}

// Run consumes incoming messages from the service and replies until the
// context is cancelled. Receipts are drained and logged.
func (h *ResponseHandler) Run(ctx context.Context, svc Service) {
	slog.Info("ResponseHandler.Run: response loop starting")
	responses := svc.Responses()
	receipts := svc.Receipts()
	for {
		select {
		case <-ctx.Done():
			slog.Info("ResponseHandler.Run: response loop stopping")
			return
		case receipt, ok := <-receipts:
			if !ok {
				receipts = nil
				continue
			}
			slog.Debug("ResponseHandler.Run: receipt", "to", receipt.To, "status", receipt.Status)
		case resp, ok := <-responses:
			if !ok {
				slog.Info("ResponseHandler.Run: responses channel closed")
				return
			}
			reply, _, err := h.ProcessMessage(ctx, resp.From, resp.Body)
			if err != nil {
				slog.Error("ResponseHandler.Run: turn failed", "from", resp.From, "error", err)
				continue
			}
			if reply == "" {
				continue
			}
			if err := svc.SendMessage(ctx, resp.From, reply); err != nil {
				slog.Error("ResponseHandler.Run: reply delivery failed", "to", resp.From, "error", err)
			}
		}
	}
}
