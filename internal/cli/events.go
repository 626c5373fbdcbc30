package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/dto"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/event"
	pkgkafka "github.com/mehdighelich1379/Heart-Disease/pkg/kafka"
)

// tailedEvent is the union of the fields the service publishes.
type tailedEvent struct {
	OccurredAt      time.Time `json:"occurred_at"`
	EventType       string    `json:"event_type"`
	EventID         string    `json:"event_id"`
	AggregateID     string    `json:"aggregate_id"`
	TenantID        string    `json:"tenant_id"`
	SubjectRef      string    `json:"subject_ref,omitempty"`
	SummaryTier     string    `json:"summary_tier,omitempty"`
	AdverseFindings []string  `json:"adverse_findings"`
	Probability     float64   `json:"probability"`
	HighRiskCombo   bool      `json:"high_risk_combo"`
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect published assessment events",
	}
	cmd.AddCommand(newEventsTailCmd(opts))
	return cmd
}

func newEventsTailCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow high-risk events on the assessment topic",
		Long: `Tail consumes the assessment topic and prints every high-risk event until
interrupted. Without --group it starts at the newest offset and commits
nothing. --all prints completed assessments as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := opts.jsonOutput()
			if err != nil {
				return err
			}
			brokers := opts.v.GetStringSlice("kafka.brokers")
			if len(brokers) == 0 {
				return fmt.Errorf("no kafka brokers configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			consumer, err := pkgkafka.NewConsumer(pkgkafka.Config{
				Brokers:       brokers,
				ConsumerGroup: opts.v.GetString("kafka.group"),
			}, opts.v.GetString("kafka.topic"), eventPrinter(cmd.OutOrStdout(), opts.v.GetBool("kafka.all"), asJSON), opts.logger)
			if err != nil {
				return err
			}
			defer consumer.Close()

			return consumer.Start(ctx)
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("brokers", []string{"localhost:9092"}, "kafka brokers")
	flags.String("topic", "heart.assessments", "assessment event topic")
	flags.String("group", "", "consumer group (empty reads from the newest offset)")
	flags.Bool("all", false, "print every event, not only high-risk ones")
	for key, flag := range map[string]string{
		"kafka.brokers": "brokers",
		"kafka.topic":   "topic",
		"kafka.group":   "group",
		"kafka.all":     "all",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}

// eventPrinter returns a consumer handler that writes one line per event.
// Unless all is set only high-risk events are printed.
func eventPrinter(w io.Writer, all, asJSON bool) pkgkafka.Handler {
	return func(_ context.Context, msg pkgkafka.Message) error {
		var evt tailedEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		if t := msg.Headers["event_type"]; t != "" {
			evt.EventType = t
		}
		if !all && evt.EventType != event.EventTypeHighRiskDetected {
			return nil
		}

		if asJSON {
			return json.NewEncoder(w).Encode(evt)
		}

		line := fmt.Sprintf("%s  %-26s  risk=%s%%  assessment=%s",
			evt.OccurredAt.Format(time.RFC3339), evt.EventType, dto.RiskPercent(evt.Probability), evt.AggregateID)
		if evt.SubjectRef != "" {
			line += "  subject=" + evt.SubjectRef
		}
		if evt.HighRiskCombo {
			line += "  combo"
		}
		if len(evt.AdverseFindings) > 0 {
			line += "  adverse=" + strings.Join(evt.AdverseFindings, ",")
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}
}
