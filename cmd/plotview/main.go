// Command plotview renders binary signal timelines as annotated line
// drawings. "render" draws a view file once; "serve" keeps a live view,
// optionally fed from GPIO lines, behind HTTP and MQTT.
package main

import (
	"log"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(afero.NewOsFs()).Execute(); err != nil {
		log.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plotview",
		Short:         "Plot binary signal timelines with pattern annotations",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newRenderCmd(fs))
	cmd.AddCommand(newServeCmd(fs))
	return cmd
}
