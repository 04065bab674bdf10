package cmd

import (
	"fmt"
	"time"

	"github.com/lockstep-cli/lockstep/media"
	"github.com/lockstep-cli/lockstep/smmps"
	"github.com/lockstep-cli/lockstep/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Float64P("from", "f", 0, "Position to start playback at, in seconds")
	playCmd.Flags().Float64P("to", "t", 0, "Position to stop playback at, in seconds (0 means the end)")
	playCmd.Flags().Bool("stats", false, "Print start-up delay statistics after playback")
}

var playCmd = &cobra.Command{
	Use:   "play <files>...",
	Short: "Play one or more media files in lock-step",
	Long: `Play one or more media files in lock-step.

Audio and video streams are started together and kept on a shared
timeline. Files whose format is not recognized are registered but
skipped during playback.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		from := lo.Must(cmd.Flags().GetFloat64("from"))
		to := lo.Must(cmd.Flags().GetFloat64("to"))
		stats := lo.Must(cmd.Flags().GetBool("stats"))

		p := smmps.New(smmps.Options{})
		defer util.Ignore(p.Close)

		var pending int
		for _, path := range args {
			if !media.Supported(path) {
				handleErr(p.AddUnsupported(path, 0))
				fmt.Printf("%s: unsupported format, stream disabled\n", path)
				continue
			}

			src, err := media.Open(path)
			handleErr(err)
			kind := src.Info().Type
			util.Ignore(src.Close)

			switch kind {
			case media.Video:
				handleErr(p.AddVideo(path))
			default:
				handleErr(p.AddAudio(path))
			}
			pending++
		}

		for i := 0; i < pending; i++ {
			result := <-p.Loads()
			if !result.Loaded {
				fmt.Printf("%s: failed to load, stream skipped\n", result.Path)
				continue
			}
			handleErr(p.Enable(result.Path, true))
		}

		duration := p.Duration()
		if to <= 0 || to > duration {
			to = duration
		}
		handleErr(p.PlayInterval(from, to))

		eraser := func() {}
		for p.IsPlaying() {
			select {
			case tick := <-p.Ticks():
				eraser()
				eraser = util.PrintErasable(fmt.Sprintf("%s / %s", util.FormatTime(tick.Position), util.FormatTime(to)))
			case <-time.After(time.Millisecond * 50):
			}
		}
		eraser()
		fmt.Printf("%s / %s\n", util.FormatTime(to), util.FormatTime(to))

		if stats {
			delays := p.Delays()
			fmt.Printf(
				"start-up compensation: mean %.1fms over %s\n",
				delays.Mean()*1000,
				util.Quantify(delays.Len(), "sample", "samples"),
			)
		}
	},
}
