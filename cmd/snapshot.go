package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kilianp07/occupancy/config"
	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/core/occupancy"
	"github.com/kilianp07/occupancy/infra/cache"
	"github.com/kilianp07/occupancy/infra/feed"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch the feed once and print the default view",
	RunE:  runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	src := cache.NewSource(feed.NewClient(cfg.Feed), cfg.Cache)
	svc := occupancy.NewService(src, cfg.Dashboard.Options())

	v := svc.View(cmd.Context(), occupancy.Selection{}, occupancy.Pin{})
	if err := writeSnapshot(cmd.OutOrStdout(), v); err != nil {
		return err
	}
	if v.Warning != "" {
		return fmt.Errorf("snapshot %s: %s", v.SnapshotID, v.Warning)
	}
	return nil
}

func writeSnapshot(w io.Writer, v occupancy.View) error {
	if v.Warning != "" {
		_, err := fmt.Fprintln(w, v.Warning)
		return err
	}
	if v.Empty {
		_, err := fmt.Fprintln(w, "Nenhum dado disponível.")
		return err
	}
	_, err := fmt.Fprintf(w,
		"Data: %s\nQtd. Passageiros: %d\nQtd. Rotas: %d\nOcupação Média: %.1f%%\n%s\n%s\n",
		v.Selection.Date.Format(model.DateLayout),
		v.Summary.Passengers,
		v.Summary.Routes,
		v.Summary.MeanPercent,
		v.Ticker.Counts,
		v.Ticker.Percents,
	)
	return err
}
