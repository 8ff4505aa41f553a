package main

import (
	"fmt"
	"text/tabwriter"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/possession-tracker/internal/app"
	"github.com/riskibarqy/possession-tracker/internal/domain/possession"
	"github.com/riskibarqy/possession-tracker/internal/usecase"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(gamesCmd, showCmd)
	showCmd.Flags().Bool("possessions", false, "include every stored possession")
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List game ids known to the event store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap("games")
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, span := usecase.StartBatchSpan(cmd.Context(), "games")
		defer span.End()

		extractor, err := app.NewExtractor(ctx, rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		defer extractor.Close()

		ids, err := extractor.Service.ListGameIDs(ctx)
		if err != nil {
			return err
		}
		for _, gameID := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), gameID)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <game_id>",
	Short: "Show the stored quality report of a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withPossessions, _ := cmd.Flags().GetBool("possessions")

		rt, err := bootstrap("games.show")
		if err != nil {
			return err
		}
		defer rt.close()

		ctx, span := usecase.StartBatchSpan(cmd.Context(), "show")
		defer span.End()

		extractor, err := app.NewExtractor(ctx, rt.cfg, rt.logger)
		if err != nil {
			return err
		}
		defer extractor.Close()

		view, err := extractor.Service.GetGame(ctx, args[0])
		if crerr.Is(err, possession.ErrGameNotFound) {
			return crerr.Newf("game %s has not been extracted", args[0])
		}
		if err != nil {
			return err
		}
		if withPossessions {
			return writeJSON(cmd.OutOrStdout(), view)
		}
		return writeReport(cmd, view)
	},
}

func writeReport(cmd *cobra.Command, view usecase.GameView) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "GAME\t%s\n", view.GameID)
	fmt.Fprintf(w, "POSSESSIONS\t%d\n", len(view.Possessions))
	fmt.Fprintf(w, "PASSED\t%t\n", view.Report.Passed)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CHECK\tRESULT\tDETAIL")
	for _, check := range view.Report.Checks {
		result := "pass"
		switch {
		case check.Skipped:
			result = "skipped"
		case !check.Passed:
			result = "FAIL"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, result, check.Detail)
	}
	return w.Flush()
}
