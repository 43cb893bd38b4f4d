package handlers

import (
	"context"
	"net/http"

	"github.com/bobmcallan/stock-radar/internal/common"
	"github.com/bobmcallan/stock-radar/internal/models"
)

// Relayer forwards a result to a chat.
type Relayer interface {
	Relay(ctx context.Context, result *models.AnalysisResult, botToken, chatID string) error
}

// RelayRequest is the body of POST /api/relay. The bot token is used for
// this one request and never stored or logged.
type RelayRequest struct {
	Result   *models.AnalysisResult `json:"result"`
	BotToken string                 `json:"bot_token"`
	ChatID   string                 `json:"chat_id"`
}

// RelayHandler serves POST /api/relay.
type RelayHandler struct {
	logger  *common.Logger
	relayer Relayer
}

// NewRelayHandler creates a new relay handler.
func NewRelayHandler(logger *common.Logger, relayer Relayer) *RelayHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &RelayHandler{logger: logger, relayer: relayer}
}

func (h *RelayHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req RelayRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteErrorWithCode(w, err)
		return
	}

	if err := h.relayer.Relay(r.Context(), req.Result, req.BotToken, req.ChatID); err != nil {
		h.logger.Warn().Str("code", models.ErrorCode(err)).Err(err).Msg("relay failed")
		WriteErrorWithCode(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
