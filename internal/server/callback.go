package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/oneshot/internal/ui"
)

// CallbackHandler serves the terminal route.
//
// Every hit is parsed and answered with a page, but only the first one reaches the capture slot.
// Later hits leave the slot alone and get the "already completed" page.
type CallbackHandler struct {
	path   string
	state  *captureState
	logger *log.Logger
}

var _ Handler = (*CallbackHandler)(nil)

func newCallbackHandler(path string, state *captureState, logger *log.Logger) *CallbackHandler {
	return &CallbackHandler{path: path, state: state, logger: logger}
}

// Routes returns the configured callback path.
func (h *CallbackHandler) Routes() []string {
	return []string{h.path}
}

// ServeHTTP classifies the query string, offers the outcome to the capture slot and renders the page.
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	outcome := classify(r.URL.RawQuery)

	if !h.state.tryFill(outcome) {
		h.logger.Debug("callback ignored, response already captured", "outcome", outcome.Kind)
		writePage(w, http.StatusOK, ui.CompletedHeadings)
		return
	}

	if outcome.Err != nil {
		h.logger.Warn("callback captured", "outcome", outcome.Kind, "error", outcome.Err)
	} else {
		h.logger.Info("callback captured", "outcome", outcome.Kind, "provider_error", outcome.ErrorCode())
	}

	writePage(w, http.StatusOK, ui.HeadingsFor(outcome))
}
