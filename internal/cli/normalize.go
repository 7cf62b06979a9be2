package cli

import (
	"fmt"

	"capirelay/internal/events/pipeline"
	"capirelay/internal/events/validator"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newNormalizeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print the outbound document for an event",
		Long: `Validate, sanitize and hash an event exactly as the relay does and
print the document that would be sent. Nothing leaves the machine.`,
		Example: `  capictl normalize --file purchase.json
  capictl normalize -f - --forwarded-for "203.0.113.9, 10.0.0.1" < purchase.json`,
		RunE: runNormalize,
	}
	addTransportFlags(cmd)
	return cmd
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	log := commandLogger(cmd)

	ev, err := readEvent(cmd)
	if err != nil {
		return err
	}

	v := validator.NewEventValidator(log)
	if err := v.Validate(ev); err != nil {
		return fmt.Errorf("event validation failed: %w", err)
	}

	normalizePhone, _ := cmd.Flags().GetBool("normalize-phone")
	p := pipeline.New(v, pipeline.HashOptions{NormalizePhone: normalizePhone}, log)

	result, _, err := p.Run(pipeline.Input{
		Event:         ev,
		Transport:     transportFromFlags(cmd),
		CorrelationID: uuid.New().String(),
	})
	if err != nil {
		return err
	}

	return printJSON(cmd.OutOrStdout(), result.Document)
}
