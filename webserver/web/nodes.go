package web

import (
	"errors"
	"io"
	"net/http"

	"github.com/mordilloSan/go-logger/logger"

	"github.com/mordilloSan/hostnodes/common/flow"
)

// maxMessageBytes bounds an injected message body.
const maxMessageBytes = 64 * 1024

type nodeResult struct {
	Messages []*flow.Message `json:"messages"`
	Errors   []string        `json:"errors"`
}

// ListNodesHandler answers with the registered node types.
func ListNodesHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string][]string{"nodes": flow.Types()})
}

// InjectNodeHandler runs one node against the request body (an optional
// message) and answers with what the node emitted and reported.
func InjectNodeHandler(w http.ResponseWriter, r *http.Request) {
	nodeType := r.PathValue("type")

	msg, err := flow.ReadMessage(io.LimitReader(r.Body, maxMessageBytes))
	switch {
	case errors.Is(err, io.EOF):
		msg = nil
	case err != nil:
		WriteNodeError(w, http.StatusBadRequest, nodeType, err)
		return
	}

	out := &flow.Collector{}
	if err := flow.Dispatch(r.Context(), nodeType, msg, out); err != nil {
		if !flow.IsFatal(err) {
			WriteNodeError(w, http.StatusNotFound, nodeType, err)
			return
		}
		logger.ErrorKV("node failed", "node", nodeType, "error", err)
		WriteNodeError(w, http.StatusInternalServerError, nodeType, err)
		return
	}

	res := nodeResult{
		Messages: out.Sent(),
		Errors:   []string{},
	}
	for _, e := range out.Reported() {
		logger.WarnKV("node reported error", "node", nodeType, "error", e)
		res.Errors = append(res.Errors, e.Error())
	}
	WriteJSON(w, http.StatusOK, res)
}
