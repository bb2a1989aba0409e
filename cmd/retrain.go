package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/exoscope/internal/label"
	"github.com/KaramelBytes/exoscope/internal/logging"
	"github.com/KaramelBytes/exoscope/internal/retrain"
	"github.com/KaramelBytes/exoscope/internal/utils"
)

var (
	rtLearningRate float64
	rtNEstimators  int
	rtMaxDepth     int
	rtThreshold    float64
	rtJSON         bool
)

type retrainResult struct {
	resp *retrain.Response
	err  error
}

var retrainCmd = &cobra.Command{
	Use:   "retrain",
	Short: "Ask the classification service to retrain its model",
	Long: `Ask the classification service to retrain its model.

Hyperparameters default to the retrain_* config keys. Values are validated
before anything is sent. Ctrl-C abandons the request; nothing is retried.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		rc := c.Retrain()
		f := cmd.Flags()
		if f.Changed("learning-rate") {
			rc.LearningRate = rtLearningRate
		}
		if f.Changed("n-estimators") {
			rc.NEstimators = rtNEstimators
		}
		if f.Changed("max-depth") {
			rc.MaxDepth = rtMaxDepth
		}
		if f.Changed("threshold") {
			rc.Threshold = rtThreshold
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx = logging.WithContext(ctx, slog.Default().With("command", "retrain"))

		client := retrain.NewClient(c.ServiceURL, c.HTTPTimeout())
		sub := retrain.NewSubmitter(client)
		done := make(chan retrainResult, 1)
		if err := sub.Submit(ctx, rc, func(resp *retrain.Response, err error) {
			done <- retrainResult{resp: resp, err: err}
		}); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Retraining at %s (learning_rate=%g, n_estimators=%d, max_depth=%d, threshold=%g)...\n",
			client.BaseURL(), rc.LearningRate, rc.NEstimators, rc.MaxDepth, rc.Threshold)

		var res retrainResult
		select {
		case res = <-done:
		case <-ctx.Done():
			sub.Cancel()
			sub.Wait()
			return errors.New("retrain cancelled")
		}
		if res.err != nil {
			var rerr *retrain.RetrainError
			if errors.As(res.err, &rerr) && rerr.Retryable() {
				hint := "the request may be repeated"
				if rerr.RetryAfter > 0 {
					hint += fmt.Sprintf(" after %s", rerr.RetryAfter)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %s\n", hint)
			}
			return res.err
		}

		if rtJSON {
			b, err := utils.PrettyJSON(res.resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "✓ %s\n", strings.TrimSpace(res.resp.Message))
		p := res.resp.Params
		fmt.Fprintf(out, "  params: learning_rate=%g n_estimators=%d max_depth=%d threshold=%g\n",
			p.LearningRate, p.NEstimators, p.MaxDepth, p.Threshold)
		if labels := res.resp.Labels(); len(labels) > 0 {
			names := make([]string, len(labels))
			for i, l := range labels {
				names[i] = l.Display()
				if l == label.Unknown {
					names[i] = res.resp.Classes[i]
				}
			}
			fmt.Fprintf(out, "  classes: %s\n", strings.Join(names, ", "))
		}
		if res.resp.RequestID != "" {
			fmt.Fprintf(out, "  request_id: %s\n", res.resp.RequestID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retrainCmd)
	retrainCmd.Flags().Float64Var(&rtLearningRate, "learning-rate", 0, "learning rate in (0, 1]")
	retrainCmd.Flags().IntVar(&rtNEstimators, "n-estimators", 0, fmt.Sprintf("number of boosting rounds (1-%d)", retrain.MaxEstimators))
	retrainCmd.Flags().IntVar(&rtMaxDepth, "max-depth", 0, fmt.Sprintf("maximum tree depth (1-%d)", retrain.MaxDepth))
	retrainCmd.Flags().Float64Var(&rtThreshold, "threshold", 0, "decision threshold in [0, 1]")
	retrainCmd.Flags().BoolVar(&rtJSON, "json", false, "emit the service response as JSON")
}
