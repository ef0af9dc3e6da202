package web

import (
	"encoding/json"
	"net/http"

	"github.com/sweeney/plotview/internal/plot"
)

// InputJSON is the reply to an input endpoint.
type InputJSON struct {
	Redraw  []string     `json:"redraw"`
	Target  *plot.Target `json:"target,omitempty"`
	FrameID string       `json:"frame_id,omitempty"`
}

// ErrorJSON is the reply to a rejected request.
type ErrorJSON struct {
	Error string `json:"error"`
}

// redrawNames lists the layers in r, cursor first.
func redrawNames(r plot.Redraw) []string {
	names := []string{}
	if r&plot.RedrawCursor != 0 {
		names = append(names, "cursor")
	}
	if r&plot.RedrawTimeline != 0 {
		names = append(names, "timeline")
	}
	return names
}

func writeResult(w http.ResponseWriter, res Result) {
	w.Header().Set("Content-Type", "application/json")
	data, _ := json.Marshal(InputJSON{
		Redraw:  redrawNames(res.Redraw),
		Target:  res.Target,
		FrameID: res.FrameID,
	})
	w.Write(data)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	data, _ := json.Marshal(ErrorJSON{Error: msg})
	w.Write(data)
}
