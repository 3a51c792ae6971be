package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/LucaFagnoni/AudioMerge/internal/config"
	"github.com/LucaFagnoni/AudioMerge/internal/ffmpeg"
	"github.com/LucaFagnoni/AudioMerge/internal/logging"
	"github.com/LucaFagnoni/AudioMerge/internal/planner"
	"github.com/LucaFagnoni/AudioMerge/internal/session"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mixcut",
	Short: "mixcut - keyframe-aware video cutting with multi-track audio mixing",
	Long:  "Cuts a video between IN/OUT points, stream-copying at keyframes or re-encoding for frame-exact cuts, with per-track gain and loudness normalization.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(exportCmd)
}

func newSession() (*session.Session, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	engine, err := ffmpeg.New(log.Logger, cfg.FFmpeg)
	if err != nil {
		return nil, nil, err
	}

	return session.New(log.Logger, engine, cfg), cfg, nil
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Inspect streams and keyframes of a video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, _, err := newSession()
		if err != nil {
			return err
		}

		if err := sess.Load(cmd.Context(), args[0]); err != nil {
			return err
		}

		info := sess.Info()
		tl := sess.Timeline()

		fmt.Printf("%s\n", info.FilePath)
		fmt.Printf("  video: %s %dx%d @ %.3f fps, %v (%d frames)\n",
			info.VideoCodec, info.Width, info.Height, info.FPS, info.Duration, tl.TotalFrames())
		fmt.Printf("  keyframes: %d\n", sess.Keyframes().Len())
		for _, t := range sess.Tracks().All() {
			lang := t.Language
			if lang == "" {
				lang = "und"
			}
			fmt.Printf("  audio %d: %s %s, %d ch, %d Hz\n",
				t.StreamIndex, t.Codec, lang, t.Channels, t.SampleRate)
		}

		return nil
	},
}

var (
	inFrame   int
	outFrame  int
	mode      string
	output    string
	normalize bool
	gains     []string
	muted     []int
)

var exportCmd = &cobra.Command{
	Use:   "export [input video]",
	Short: "Cut and export a video between IN and OUT frames",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cutMode, err := parseMode(mode)
		if err != nil {
			return err
		}

		sess, _, err := newSession()
		if err != nil {
			return err
		}

		if err := sess.Load(cmd.Context(), args[0]); err != nil {
			return err
		}

		tl := sess.Timeline()
		if outFrame < 0 {
			outFrame = tl.TotalFrames() - 1
		}

		tl.Seek(inFrame)
		if _, err := tl.MarkIn(); err != nil {
			return err
		}
		tl.Seek(outFrame)
		if _, err := tl.MarkOut(); err != nil {
			return err
		}

		trackSet := sess.Tracks()
		for _, idx := range muted {
			if err := trackSet.SetEnabled(idx, false); err != nil {
				return err
			}
		}
		for _, g := range gains {
			idx, db, err := parseGain(g)
			if err != nil {
				return err
			}
			if err := trackSet.SetGain(idx, db); err != nil {
				return err
			}
		}

		lastPct := -1
		job, err := sess.Export(cmd.Context(), output, cutMode, normalize, func(p *ffmpeg.Progress) {
			pct := int(p.Percentage)
			if pct > lastPct {
				lastPct = pct
				log.Info().Int("percent", pct).Str("speed", p.Speed).Msg("exporting")
			}
		})
		if err != nil {
			return err
		}

		result := <-job.Done()
		if result.Err != nil {
			var execErr *ffmpeg.ExecError
			if errors.As(result.Err, &execErr) {
				log.Error().Int("exit_code", execErr.ExitCode).Msg("engine failed")
				fmt.Fprintln(os.Stderr, execErr.Stderr)
			}
			return result.Err
		}

		log.Info().Str("output", result.OutputPath).Msg("export complete")
		return nil
	},
}

func init() {
	exportCmd.Flags().IntVar(&inFrame, "in", 0, "IN point (frame number)")
	exportCmd.Flags().IntVar(&outFrame, "out", -1, "OUT point (frame number, default: last frame)")
	exportCmd.Flags().StringVar(&mode, "mode", "fast", "cut mode: fast (keyframe snap, stream copy) or precise (re-encode)")
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: <input>_cut.mp4)")
	exportCmd.Flags().BoolVar(&normalize, "normalize", false, "apply dynamic range normalization to the mixed audio")
	exportCmd.Flags().StringArrayVar(&gains, "gain", nil, "per-track gain as track=dB (repeatable, e.g. --gain 0=-6)")
	exportCmd.Flags().IntSliceVar(&muted, "mute", nil, "audio track indices to exclude from the output")
}

func parseMode(s string) (planner.Mode, error) {
	switch strings.ToLower(s) {
	case "fast":
		return planner.Fast, nil
	case "precise":
		return planner.Precise, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want fast or precise)", s)
	}
}

func parseGain(s string) (int, float64, error) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid gain %q (want track=dB)", s)
	}
	idx, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid gain track index %q", parts[0])
	}
	db, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid gain value %q", parts[1])
	}
	return idx, db, nil
}

