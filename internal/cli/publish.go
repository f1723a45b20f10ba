package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/boundary-layer-viewer/internal/adapter/kafka"
)

func newPublishCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Load the sample table once and publish the profile to Kafka",
		Long: `Publish runs one ingestion pass and writes one message per extracted point
to KAFKA_PROFILE_TOPIC, keyed by station. KAFKA_BROKERS must be set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.cfg.KafkaBrokers) == 0 {
				return errors.New("KAFKA_BROKERS is not set")
			}

			writer := kafkaadapter.NewWriter(a.cfg, a.logger)
			defer func() {
				if err := writer.Close(); err != nil {
					a.logger.Error("kafka writer close error", "error", err)
				}
			}()

			_, ds, err := a.loadOnce(cmd.Context())
			if err != nil {
				return err
			}
			if ds.Empty() {
				return errors.New("no points extracted; nothing to publish")
			}
			if err := writer.PublishProfile(cmd.Context(), ds); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), styleSuccess.Render(iconSuccess)+" "+
				fmt.Sprintf("Published %d points to %s", len(ds.Points), a.cfg.KafkaProfileTopic))
			return nil
		},
	}
}
