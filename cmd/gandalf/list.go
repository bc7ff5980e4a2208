package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolobosdimitrios/GANDALF/internal/store"
)

func newListCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored requests and whether each reached a contract",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(root)
			if err != nil {
				return err
			}

			db, err := store.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			summaries, err := db.ListRequests(cmd.Context())
			if err != nil {
				return err
			}
			if len(summaries) == 0 {
				fmt.Println("no stored requests")
				return nil
			}

			for _, s := range summaries {
				status := "pending"
				if s.HasContract {
					status = "contract"
				}
				prompt := s.UserPrompt
				if len(prompt) > 60 {
					prompt = prompt[:57] + "..."
				}
				fmt.Printf("%s  %-8s  %s  %s\n",
					s.ID, status, s.CreatedAt.Format("2006-01-02 15:04"), prompt)
			}
			return nil
		},
	}
}
