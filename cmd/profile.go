package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabclean/internal/table"
	"github.com/KaramelBytes/tabclean/internal/utils"
)

var (
	prfInput      inputFlags
	prfOutputPath string
	prfRobustThr  float64
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Print a markdown profile of a CSV/TSV/XLSX table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := prfInput.load(args[0])
		if err != nil {
			return err
		}
		md := table.Profile(t, prfRobustThr).Markdown()
		if prfOutputPath != "" {
			if err := utils.SafeWriteFile(prfOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", prfOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	prfInput.bind(profileCmd)
	profileCmd.Flags().StringVarP(&prfOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().Float64Var(&prfRobustThr, "outlier-threshold", table.DefaultRobustThreshold, "robust |z| threshold for outlier counts (MAD-based)")
}
