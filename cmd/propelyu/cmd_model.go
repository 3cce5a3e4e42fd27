package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/propelyu/pkg/suggest"
)

// propelyu model:train
var modelTrainCmd = &cobra.Command{
	Use:   "model:train",
	Short: "Fit the price model on the stored adverts and report its size",
	RunE: func(cmd *cobra.Command, args []string) error {
		k, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer shutdown(k)

		state, err := k.Suggestions.Retrain(cmd.Context())
		if errors.Is(err, suggest.ErrInsufficientData) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not enough adverts to train a model (need at least 2).")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Trained model v%d on %d adverts (%d terms)\n",
			state.Version, state.Samples, state.Model.VocabularySize())
		return nil
	},
}
