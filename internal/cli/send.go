package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"capirelay/internal/events/service"
	"capirelay/internal/events/validator"
	"capirelay/pkg/capi"
	apperrors "capirelay/pkg/errors"
	"capirelay/pkg/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Normalize an event and forward it once",
		Long: `Run the relay pipeline on an event and send the result to the
Conversions API with a single attempt. The access token falls back to
` + config.EnvCAPIAccessToken + ` when --token is not given.`,
		Example: `  capictl send --pixel-id 1234567890 --file purchase.json
  capictl send --pixel-id 1234567890 --token EAAB... --file purchase.json --ip 203.0.113.9`,
		RunE: runSend,
	}
	addTransportFlags(cmd)
	cmd.Flags().String("pixel-id", "", "destination (pixel) id (required)")
	cmd.Flags().String("token", "", "access token")
	cmd.Flags().String("base-url", capi.DefaultBaseURL, "Conversions API base URL")
	cmd.Flags().String("api-version", capi.DefaultAPIVersion, "Graph API version")
	cmd.Flags().Duration("timeout", capi.DefaultTimeout, "forward timeout")
	_ = cmd.MarkFlagRequired("pixel-id")
	return cmd
}

func runSend(cmd *cobra.Command, _ []string) error {
	log := commandLogger(cmd)

	pixelID, _ := cmd.Flags().GetString("pixel-id")
	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv(config.EnvCAPIAccessToken)
	}
	if token == "" {
		return fmt.Errorf("access token is required (use --token or set %s)", config.EnvCAPIAccessToken)
	}

	baseURL, _ := cmd.Flags().GetString("base-url")
	apiVersion, _ := cmd.Flags().GetString("api-version")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	normalizePhone, _ := cmd.Flags().GetBool("normalize-phone")

	ev, err := readEvent(cmd)
	if err != nil {
		return err
	}

	svc := service.NewEventService(
		validator.NewEventValidator(log),
		capi.NewClient(capi.Config{BaseURL: baseURL, APIVersion: apiVersion, Timeout: timeout}),
		service.Options{NormalizePhone: normalizePhone},
		log,
	)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout+5*time.Second)
	defer cancel()

	result, err := svc.Process(ctx, service.ProcessRequest{
		Event:         ev,
		DestinationID: pixelID,
		AccessToken:   token,
		Transport:     transportFromFlags(cmd),
		CorrelationID: uuid.New().String(),
	})
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if printErr := printJSON(cmd.ErrOrStderr(), json.RawMessage(appErr.ToJSON())); printErr != nil {
			log.Error("failed to print error response", "error", printErr)
		}
		return fmt.Errorf("send failed: %s", appErr.Message)
	}

	return printJSON(cmd.OutOrStdout(), result)
}
