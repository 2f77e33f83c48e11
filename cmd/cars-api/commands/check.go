package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func checkCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Ping the entity store and the search index, exiting non-zero if either is down",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			st, err := openStores(ctx, 1)
			if err != nil {
				return err
			}
			defer st.Close()

			pingers := st.pingers()
			names := make([]string, 0, len(pingers))
			for name := range pingers {
				names = append(names, name)
			}
			sort.Strings(names)

			var failed int
			for _, name := range names {
				if err := pingers[name].Ping(ctx); err != nil {
					zapLog.Error("store check failed", zap.String("store", name), zap.Error(err))
					fmt.Fprintf(cmd.OutOrStdout(), "%-14s FAIL  %v\n", name, err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s OK\n", name)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d stores unavailable", failed, len(names))
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "overall time allowed for the checks")
	return cmd
}
