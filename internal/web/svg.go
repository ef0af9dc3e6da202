package web

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"sort"

	"github.com/sweeney/plotview/internal/plot"
)

// WriteSVG writes f as a standalone SVG document. Commands are painted in
// ascending z; equal z keeps frame order.
func WriteSVG(w io.Writer, f plot.Frame) error {
	cmds := make([]plot.DrawCommand, len(f.Commands))
	copy(cmds, f.Commands)
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].Z < cmds[j].Z })

	width, height := f.Width, f.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		width, height, width, height)
	fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="#ffffff"/>`+"\n")
	for _, c := range cmds {
		fmt.Fprintf(bw, `<line class="%s" x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="%d"/>`+"\n",
			c.Layer, c.X0, c.Y0, c.X1, c.Y1, html.EscapeString(string(c.Color)), c.Width)
	}
	fmt.Fprintln(bw, "</svg>")
	return bw.Flush()
}
