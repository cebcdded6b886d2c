package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lectureOutline/config"
	"lectureOutline/processors"
	"lectureOutline/watcher"
)

var (
	flagWindowSize float64
	flagOverlap    float64
	flagThreshold  float64
	flagLocal      bool
	flagDataRoot   string
	flagOutput     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lectureoutline",
		Short: "Segment lecture videos into summarized, timestamped chapters",
		Long: `lectureoutline ingests a lecture video and produces a transcript,
an SRT subtitle file, and topic-coherent chapters with LLM-generated
titles, summaries, importance scores and key points.`,
		SilenceUsage: true,
	}

	processCmd := &cobra.Command{
		Use:   "process <video>...",
		Short: "Run the full pipeline on one or more lecture videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithFlags(cmd)
			if err != nil {
				return err
			}
			pipeline := processors.NewPipeline(cfg)
			ctx := signalContext()

			// 讲座之间相互独立，一个失败不拖累其它的
			failed := 0
			for _, videoPath := range args {
				result, err := pipeline.ProcessVideo(ctx, videoPath)
				if err != nil {
					log.Printf("处理失败 %s: %v", videoPath, err)
					failed++
					continue
				}
				fmt.Printf("%s: %d segments, %d chapters (%d fallbacks) -> %s\n",
					result.LectureID, result.SegmentCount, result.ChapterCount,
					result.FallbackCount, result.OutputDir)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d lectures failed", failed, len(args))
			}
			return nil
		},
	}

	summarizeCmd := &cobra.Command{
		Use:   "summarize <chapters_raw.json>",
		Short: "Re-run summarization on an existing raw chapter file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithFlags(cmd)
			if err != nil {
				return err
			}
			pipeline := processors.NewPipeline(cfg)
			result, err := pipeline.SummarizeFile(signalContext(), args[0], flagOutput)
			if err != nil {
				return err
			}
			fmt.Printf("%d chapters summarized (%d fallbacks) -> %s\n",
				result.ChapterCount, result.FallbackCount, result.OutputDir)
			return nil
		},
	}
	summarizeCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output path (default: chapters.json next to input)")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the input directory and process new videos as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfigWithFlags(cmd)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.InputDir, 0755); err != nil {
				return fmt.Errorf("create input dir: %w", err)
			}
			pipeline := processors.NewPipeline(cfg)

			w := watcher.New(cfg.InputDir, cfg.MaxConcurrency, func(ctx context.Context, videoPath string) error {
				_, err := pipeline.ProcessVideo(ctx, videoPath)
				return err
			})

			ctx := signalContext()
			if err := w.Start(ctx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		},
	}

	for _, cmd := range []*cobra.Command{processCmd, summarizeCmd, watchCmd} {
		cmd.Flags().Float64Var(&flagWindowSize, "window-size", 0, "sliding window size in seconds")
		cmd.Flags().Float64Var(&flagOverlap, "overlap", -1, "window overlap in seconds")
		cmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "topic boundary similarity threshold")
		cmd.Flags().BoolVar(&flagLocal, "local", false, "force the local summarizer instead of the LLM")
		cmd.Flags().StringVar(&flagDataRoot, "data-root", "", "artifact output root directory")
		rootCmd.AddCommand(cmd)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfigWithFlags 加载配置并套用命令行覆盖，再做一次预检
func loadConfigWithFlags(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("window-size") {
		cfg.WindowSize = flagWindowSize
	}
	if cmd.Flags().Changed("overlap") {
		cfg.WindowOverlap = flagOverlap
	}
	if cmd.Flags().Changed("threshold") {
		cfg.SimilarityThreshold = flagThreshold
	}
	if flagLocal {
		cfg.ForceLocalSummarizer = true
	}
	if flagDataRoot != "" {
		cfg.DataRoot = flagDataRoot
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ch
		log.Printf("收到退出信号，正在停止...")
		cancel()
	}()
	return ctx
}
