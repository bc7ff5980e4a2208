package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolobosdimitrios/GANDALF/internal/router"
)

func newPlanCmd(root *rootOptions) *cobra.Command {
	var complexity string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which tier serves each stage and the estimated run cost",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(root)
			if err != nil {
				return err
			}

			r := router.New(cfg.Router)
			plan, err := r.Plan(router.Complexity(complexity))
			if err != nil {
				return err
			}

			fmt.Printf("%-10s %-10s %s\n", "STAGE", "TIER", "MODEL")
			for _, choice := range plan {
				fmt.Printf("%-10s %-10s %s\n", choice.Stage, choice.Tier, choice.Model)
			}

			cost, err := r.EstimatePipelineCost(router.Complexity(complexity))
			if err != nil {
				return err
			}
			fmt.Printf("\nestimated clean-path cost: $%.4f\n", cost)
			return nil
		},
	}

	cmd.Flags().StringVar(&complexity, "complexity", "normal", "complexity hint: low, normal, high")
	return cmd
}
