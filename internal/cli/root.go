package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"capirelay/internal/events/pipeline"
	"capirelay/pkg/logger"
	"capirelay/pkg/model"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the capictl command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "capictl",
		Short: "Conversions API relay tooling",
		Long: `capictl runs the relay's normalization pipeline locally.

Inspect exactly what would be sent for an event, or normalize and
forward a single event to the Conversions API.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("log-level", logger.WARN, "log level written to stderr: debug, info, warn, error")

	root.AddCommand(newNormalizeCommand())
	root.AddCommand(newSendCommand())
	return root
}

func Execute() error {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func commandLogger(cmd *cobra.Command) *logger.Logger {
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(logger.Config{
		Level:   level,
		Format:  logger.TEXT,
		Output:  cmd.ErrOrStderr(),
		Service: "capictl",
	})
}

// addTransportFlags registers the flags that stand in for connection metadata.
func addTransportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "event JSON file, - for stdin (required)")
	cmd.Flags().String("ip", "", "client address as seen by the relay")
	cmd.Flags().String("forwarded-for", "", "X-Forwarded-For header value")
	cmd.Flags().String("user-agent", "", "User-Agent header value")
	cmd.Flags().Bool("normalize-phone", false, "parse phone numbers to E.164 digits before hashing")
	_ = cmd.MarkFlagRequired("file")
}

func transportFromFlags(cmd *cobra.Command) pipeline.Transport {
	ip, _ := cmd.Flags().GetString("ip")
	forwardedFor, _ := cmd.Flags().GetString("forwarded-for")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	return pipeline.Transport{
		RemoteAddr:   ip,
		ForwardedFor: forwardedFor,
		UserAgent:    userAgent,
	}
}

func readEvent(cmd *cobra.Command) (*model.RawEvent, error) {
	path, _ := cmd.Flags().GetString("file")

	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ev model.RawEvent
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &ev, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
