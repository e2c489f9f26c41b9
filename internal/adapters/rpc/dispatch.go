package rpc

import (
	"bytes"
	"encoding/json"

	"craftlink/go-backend/internal/app"
)

func (s *Server) dispatchRPC(method string, rawParams json.RawMessage) (any, *rpcError) {
	if method == "health_check" {
		return map[string]string{"status": "ok"}, nil
	}
	if result, rpcErr, ok := s.dispatchConversationRPC(method, rawParams); ok {
		return result, rpcErr
	}
	if result, rpcErr, ok := s.dispatchCallRPC(method); ok {
		return result, rpcErr
	}
	if result, rpcErr, ok := s.dispatchPaymentRPC(method, rawParams); ok {
		return result, rpcErr
	}
	if result, rpcErr, ok := s.dispatchReviewRPC(method, rawParams); ok {
		return result, rpcErr
	}
	if result, rpcErr, ok := s.dispatchPanelRPC(method, rawParams); ok {
		return result, rpcErr
	}
	return nil, &rpcError{Code: -32601, Message: "method not found"}
}

func (s *Server) dispatchConversationRPC(method string, rawParams json.RawMessage) (any, *rpcError, bool) {
	switch method {
	case "conversation.list":
		var params struct {
			Search string `json:"search"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		return s.panel.Conversations(params.Search), nil, true

	case "conversation.select":
		var params struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		history, err := s.panel.Select(params.ConversationID)
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return map[string]any{
			"conversation_id": params.ConversationID,
			"messages":        history,
		}, nil, true

	case "message.list":
		return s.panel.History(), nil, true

	case "message.send":
		var params struct {
			Body string `json:"body"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		msg, sent, err := s.panel.SendMessage(params.Body)
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return map[string]any{"sent": sent, "message": msg}, nil, true
	}
	return nil, nil, false
}

func (s *Server) dispatchCallRPC(method string) (any, *rpcError, bool) {
	switch method {
	case "call.initiate":
		cs, err := s.panel.StartCall()
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return cs, nil, true

	case "call.end":
		cs, err := s.panel.EndCall()
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return cs, nil, true

	case "call.state":
		return s.panel.CallSession(), nil, true
	}
	return nil, nil, false
}

func (s *Server) dispatchPaymentRPC(method string, rawParams json.RawMessage) (any, *rpcError, bool) {
	switch method {
	case "payment.open":
		var params struct {
			MessageID string `json:"message_id"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		tx, err := s.panel.OpenPaymentForm(params.MessageID)
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return tx, nil, true

	case "payment.submit":
		var params struct {
			Amount       string `json:"amount"`
			ProjectLabel string `json:"project_label"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		tx, err := s.panel.SubmitPayment(params.Amount, params.ProjectLabel)
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return tx, nil, true

	case "payment.cancel":
		s.panel.CancelPayment()
		return map[string]string{"status": "cancelled"}, nil, true

	case "payment.request":
		var params struct {
			Amount       string `json:"amount"`
			ProjectLabel string `json:"project_label"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		msg, err := s.panel.RequestPayment(params.Amount, params.ProjectLabel)
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return msg, nil, true

	case "payment.get":
		var params struct {
			TransactionID string `json:"transaction_id"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		tx, ok := s.panel.Transaction(params.TransactionID)
		if !ok {
			return nil, &rpcError{Code: codeNotFound, Message: "unknown transaction"}, true
		}
		return tx, nil, true
	}
	return nil, nil, false
}

func (s *Server) dispatchReviewRPC(method string, rawParams json.RawMessage) (any, *rpcError, bool) {
	switch method {
	case "review.rate":
		var params struct {
			Rating int `json:"rating"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		if err := s.panel.RateReview(params.Rating); err != nil {
			return nil, mapServiceError(err), true
		}
		return map[string]string{"status": "ok"}, nil, true

	case "review.comment":
		var params struct {
			Comment string `json:"comment"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		if err := s.panel.CommentReview(params.Comment); err != nil {
			return nil, mapServiceError(err), true
		}
		return map[string]string{"status": "ok"}, nil, true

	case "review.submit":
		rev, err := s.panel.SubmitReview()
		if err != nil {
			return nil, mapServiceError(err), true
		}
		return rev, nil, true

	case "review.skip":
		s.panel.SkipReview()
		return map[string]string{"status": "skipped"}, nil, true
	}
	return nil, nil, false
}

func (s *Server) dispatchPanelRPC(method string, rawParams json.RawMessage) (any, *rpcError, bool) {
	switch method {
	case "panel.view":
		return s.panel.View(), nil, true

	case "metrics.snapshot":
		return s.panel.Metrics(), nil, true

	case "notify.poll":
		var params struct {
			FromSeq int64 `json:"from_seq"`
		}
		if err := decodeParams(rawParams, &params); err != nil {
			return nil, rpcInvalidParams(), true
		}
		replay, _, cancel := s.panel.Hub().Subscribe(params.FromSeq)
		cancel()
		if replay == nil {
			replay = []app.NotificationEvent{}
		}
		return replay, nil, true
	}
	return nil, nil, false
}

// decodeParams strictly decodes params into dst. Absent or null params are
// allowed and leave dst zeroed.
func decodeParams(rawParams json.RawMessage, dst any) error {
	if len(rawParams) == 0 || bytes.Equal(rawParams, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(rawParams))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
