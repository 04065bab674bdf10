package cmd

import (
	"fmt"

	"github.com/lockstep-cli/lockstep/key"
	"github.com/lockstep-cli/lockstep/media"
	"github.com/lockstep-cli/lockstep/style"
	"github.com/lockstep-cli/lockstep/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe <files>...",
	Short: "Inspect media files and report their properties",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bold := style.New().Bold(true)

		for _, path := range args {
			if !media.Supported(path) {
				fmt.Printf("%s: unsupported format\n", bold.Render(path))
				continue
			}

			src, err := media.Open(path)
			handleErr(err)
			info := src.Info()
			util.Ignore(src.Close)

			fmt.Println(bold.Render(path))
			fmt.Printf("  type      %s\n", info.Type)
			fmt.Printf("  rate      %g\n", info.Rate)
			fmt.Printf("  units     %d\n", info.Units)
			fmt.Printf("  duration  %s\n", util.FormatTime(info.Duration()))

			if viper.GetBool(key.ProbeShowChannels) && info.Type == media.Audio {
				fmt.Printf("  channels  %d\n", info.Channels)
				fmt.Printf("  depth     %s\n", util.Quantify(info.Depth, "byte", "bytes"))
			}
		}
	},
}
