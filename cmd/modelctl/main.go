package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"modelserve/internal/model"
	"modelserve/internal/service"
	"modelserve/pkg/artifact"
	"modelserve/pkg/config"
	"modelserve/pkg/registry"
	redisstore "modelserve/pkg/store/redis"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "modelctl",
		Short:         "Inspect and try model artifacts offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path (redis settings for redis:// locations)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", config.DefaultLoadTimeout, "artifact load timeout")

	root.AddCommand(newInspectCmd(&cfgPath, &timeout))
	root.AddCommand(newPredictCmd(&cfgPath, &timeout))

	return root
}

func newInspectCmd(cfgPath *string, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <location>",
		Short: "Load an artifact and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadArtifact(cmd.Context(), *cfgPath, args[0], *timeout)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), model.ModelInfoResponse{
				Status:           model.StatusActive,
				LastTrainingTime: a.TrainingTime,
				Features:         a.FeatureNames,
				ModelType:        a.Kind(),
			})
		},
	}
}

func newPredictCmd(cfgPath *string, timeout *time.Duration) *cobra.Command {
	return &cobra.Command{
		Use:   "predict <location> name=value...",
		Short: "Score one feature vector against an artifact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			features, err := parseFeatures(args[1:])
			if err != nil {
				return err
			}

			a, err := loadArtifact(cmd.Context(), *cfgPath, args[0], *timeout)
			if err != nil {
				return err
			}
			reg := registry.New()
			reg.Swap(a)

			prediction, err := service.NewPredictionService(reg).Predict(cmd.Context(), features)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), model.PredictResponse{
				EngagementScore:   prediction.Score,
				FeaturesUsed:      features,
				ModelTrainingTime: prediction.TrainingTime,
			})
		},
	}
}

func loadArtifact(ctx context.Context, cfgPath, location string, timeout time.Duration) (*artifact.Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var client *redis.Client
	if strings.HasPrefix(location, "redis://") {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		rc, err := redisstore.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		client = rc.GetClient()
	}

	source, err := artifact.NewSource(location, client)
	if err != nil {
		return nil, err
	}
	return artifact.NewReader(source, timeout).Load(ctx)
}

// parseFeatures reads name=value pairs; values must be numbers
func parseFeatures(pairs []string) (model.FeatureVector, error) {
	features := make(model.FeatureVector, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid feature %q, expected name=value", pair)
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return nil, fmt.Errorf("invalid value for feature %q: %v", name, err)
		}
		features[name] = json.Number(value)
	}
	return features, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
