package main

import (
	"fmt"
	"os"

	"calyx/compiler-go/pkg/driver"

	"github.com/spf13/cobra"
)

const toolVersion = "calyx-abi 0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "calyx-abi",
	Short: "Inspect Calyx-to-CVM ABI mapping decisions",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tool version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), toolVersion)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <platform.yml>",
	Short: "Validate a platform manifest and print its alias table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, err := driver.LoadPlatformManifest(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "target: %s\n", manifest.Target)
		fmt.Fprintf(out, "map_builtins: %v\n", manifest.Options.MapBuiltins)
		fmt.Fprintf(out, "signatures_only: %v\n", manifest.Options.SignaturesOnly)
		for _, fq := range manifest.AliasNames() {
			fmt.Fprintf(out, "%s -> %s\n", fq, manifest.Aliases[fq].Descriptor())
		}
		return nil
	},
}

var selfcheckCmd = &cobra.Command{
	Use:   "selfcheck",
	Short: "Map a built-in sample program and print the resolved ABI",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := driver.Selfcheck()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(selfcheckCmd)
}
